// SPDX-License-Identifier: EPL-2.0

package speaker

import (
	"testing"

	"github.com/hajimehoshi/oto/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/stemdeck/device"
	"github.com/ik5/stemdeck/internal/audiotest"
)

type fakePlayer struct {
	oto.Player
	playing bool
	closed  bool
}

func (p *fakePlayer) IsPlaying() bool { return p.playing }
func (p *fakePlayer) Pause()          { p.playing = false }
func (p *fakePlayer) Close() error {
	p.closed = true
	return nil
}

func TestRegistered(t *testing.T) {
	t.Parallel()

	assert.Contains(t, device.Names(), name)
}

func TestHandle_Stop(t *testing.T) {
	t.Parallel()

	player := &fakePlayer{playing: true}
	src := audiotest.NewSilentSource(44100, 2, 100)
	h := &handle{player: player, src: src}

	assert.True(t, h.IsPlaying())
	require.NoError(t, h.Stop())
	assert.False(t, h.IsPlaying())
	assert.True(t, player.closed)
	assert.True(t, src.Closed())

	assert.NoError(t, h.Stop())
}
