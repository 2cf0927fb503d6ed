// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ik5/stemdeck/audio"
	"github.com/ik5/stemdeck/device"
	"github.com/ik5/stemdeck/internal/audiotest"
	"github.com/ik5/stemdeck/mixer"
	"github.com/ik5/stemdeck/playback"
	"github.com/ik5/stemdeck/stems"
)

const (
	testRate   = 8000
	testFrames = 3 * testRate
)

var fixtureStems = []audiotest.StemSpec{
	{Name: "vocals", Waveform: audiotest.Constant(0.2)},
	{Name: "drums", Waveform: audiotest.Constant(0.3)},
	{Name: "bass", Waveform: audiotest.Constant(0.4)},
	{Name: "other", Waveform: audiotest.Constant(0.5)},
}

// recordingDevice decodes everything it is asked to play and keeps the
// handle running until stopped.
type recordingDevice struct {
	mu      sync.Mutex
	played  []*audio.Buffer
	handles []*handle
	closed  bool
}

func (d *recordingDevice) Name() string          { return "recording" }
func (d *recordingDevice) Kind() device.Kind     { return device.KindNone }
func (d *recordingDevice) Format() device.Format { return device.Format{} }

func (d *recordingDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *recordingDevice) Play(_ context.Context, src audio.Source) (device.Handle, error) {
	defer src.Close()

	buf, err := audio.ReadAll(src, 0)
	if err != nil {
		return nil, err
	}
	h := &handle{}
	h.playing.Store(true)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.played = append(d.played, buf)
	d.handles = append(d.handles, h)
	return h, nil
}

func (d *recordingDevice) plays() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.played)
}

func (d *recordingDevice) last() (*audio.Buffer, *handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := len(d.played)
	return d.played[n-1], d.handles[n-1]
}

type handle struct {
	playing atomic.Bool
	stops   atomic.Int32
}

func (h *handle) IsPlaying() bool { return h.playing.Load() }
func (h *handle) Stop() error {
	h.stops.Add(1)
	h.playing.Store(false)
	return nil
}

type mockSeparator struct {
	mock.Mock
}

func (s *mockSeparator) Name() string { return "mock" }

func (s *mockSeparator) Separate(ctx context.Context, inputPath, outputDir string) error {
	return s.Called(ctx, inputPath, outputDir).Error(0)
}

// writesStems makes the mock behave like a real backend for inputPath.
func writesStems(t *testing.T) func(mock.Arguments) {
	return func(args mock.Arguments) {
		base := stems.BaseName(args.String(1))
		audiotest.WriteStemDir(t, args.String(2), base, testRate, 1, testFrames, fixtureStems...)
	}
}

func newTestEngine(t *testing.T, cfg Config) (*Engine, *recordingDevice) {
	t.Helper()

	dev := &recordingDevice{}
	cfg.Device = dev
	if cfg.OutputDir == "" {
		cfg.OutputDir = t.TempDir()
	}
	cfg.PollInterval = 2 * time.Millisecond
	cfg.TempDir = t.TempDir()

	eng, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return eng, dev
}

func openFixture(t *testing.T, eng *Engine) *stems.Set {
	t.Helper()

	audiotest.WriteStemDir(t, eng.cfg.OutputDir, "song", testRate, 1, testFrames, fixtureStems...)
	set, err := eng.Open("song")
	require.NoError(t, err)
	return set
}

func TestNew_RequiresDevice(t *testing.T) {
	t.Parallel()

	_, err := New(Config{})
	require.ErrorIs(t, err, playback.ErrPlaybackDevice)
}

func TestEngine_OpenSelectsEveryStem(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine(t, Config{})
	set := openFixture(t, eng)

	assert.Same(t, set, eng.Stems())
	assert.Equal(t, mixer.GainSelection{
		stems.Vocals: 0, stems.Drums: 0, stems.Bass: 0, stems.Other: 0,
	}, eng.Selection())
}

func TestEngine_PlayEmptySelectionNeverStartsDevice(t *testing.T) {
	t.Parallel()

	eng, dev := newTestEngine(t, Config{})
	openFixture(t, eng)

	require.NoError(t, eng.SetSelection(context.Background(), mixer.GainSelection{}))
	err := eng.Play(context.Background())

	require.ErrorIs(t, err, mixer.ErrEmptySelection)
	assert.Zero(t, dev.plays())
	assert.Equal(t, playback.Idle, eng.Status())
}

func TestEngine_PlayWithoutStems(t *testing.T) {
	t.Parallel()

	eng, dev := newTestEngine(t, Config{})
	require.NoError(t, eng.SetSelection(context.Background(), mixer.GainSelection{stems.Vocals: 0}))

	require.ErrorIs(t, eng.Play(context.Background()), ErrNoStems)
	assert.Zero(t, dev.plays())
}

func TestEngine_PlayRendersSelection(t *testing.T) {
	t.Parallel()

	eng, dev := newTestEngine(t, Config{})
	openFixture(t, eng)
	ctx := context.Background()

	require.NoError(t, eng.SetSelection(ctx, mixer.GainSelection{stems.Vocals: 0, stems.Bass: -6}))
	require.NoError(t, eng.Play(ctx))

	assert.Equal(t, playback.Playing, eng.Status())
	assert.Equal(t, 3000*time.Millisecond, eng.Duration())

	buf, _ := dev.last()
	assert.Equal(t, 3000*time.Millisecond, buf.Duration())
	assert.InDelta(t, 0.2+0.4*0.501, buf.Samples[100], 1e-3)
}

func TestEngine_SelectionChangeWhilePlayingRestartsAtZero(t *testing.T) {
	t.Parallel()

	eng, dev := newTestEngine(t, Config{})
	openFixture(t, eng)
	ctx := context.Background()

	require.NoError(t, eng.SetSelection(ctx, mixer.GainSelection{stems.Vocals: 0, stems.Drums: 0}))
	require.NoError(t, eng.Play(ctx))
	_, first := dev.last()

	require.NoError(t, eng.SetSelection(ctx, mixer.GainSelection{stems.Vocals: 0}))

	require.Equal(t, 2, dev.plays())
	assert.False(t, first.IsPlaying())
	assert.Equal(t, playback.Playing, eng.Status())
	assert.Less(t, eng.Position(), 500*time.Millisecond)

	buf, _ := dev.last()
	assert.InDelta(t, 0.2, buf.Samples[100], 1e-3)
}

func TestEngine_SameSelectionDoesNotRestart(t *testing.T) {
	t.Parallel()

	eng, dev := newTestEngine(t, Config{})
	openFixture(t, eng)
	ctx := context.Background()

	require.NoError(t, eng.Play(ctx))
	require.NoError(t, eng.SetSelection(ctx, eng.Selection()))

	assert.Equal(t, 1, dev.plays())
}

func TestEngine_SelectionChangeWhileIdleDoesNotPlay(t *testing.T) {
	t.Parallel()

	eng, dev := newTestEngine(t, Config{})
	openFixture(t, eng)

	require.NoError(t, eng.SetSelection(context.Background(), mixer.GainSelection{stems.Bass: 3}))

	assert.Zero(t, dev.plays())
	assert.Equal(t, mixer.GainSelection{stems.Bass: 3}, eng.Selection())
}

func TestEngine_SelectionOfUnknownStemIsRejected(t *testing.T) {
	t.Parallel()

	eng, dev := newTestEngine(t, Config{})
	openFixture(t, eng)
	ctx := context.Background()
	before := eng.Selection()

	err := eng.SetSelection(ctx, mixer.GainSelection{stems.Vocals: 0, "piano": 0})
	require.ErrorIs(t, err, stems.ErrMissingStemFile)
	assert.Equal(t, before, eng.Selection())

	require.NoError(t, eng.Play(ctx))
	_, h := dev.last()

	err = eng.SetSelection(ctx, mixer.GainSelection{"piano": 0})
	require.ErrorIs(t, err, stems.ErrMissingStemFile)
	assert.Equal(t, before, eng.Selection())
	assert.Equal(t, 1, dev.plays())
	assert.True(t, h.IsPlaying())
	assert.Equal(t, playback.Playing, eng.Status())
}

func TestEngine_EmptySelectionWhilePlayingStops(t *testing.T) {
	t.Parallel()

	eng, dev := newTestEngine(t, Config{})
	openFixture(t, eng)
	ctx := context.Background()

	require.NoError(t, eng.Play(ctx))
	_, h := dev.last()

	err := eng.SetSelection(ctx, mixer.GainSelection{})

	require.ErrorIs(t, err, mixer.ErrEmptySelection)
	assert.Equal(t, playback.Stopped, eng.Status())
	assert.False(t, h.IsPlaying())
	assert.Equal(t, 1, dev.plays())
}

func TestEngine_SeekRestartsFromZero(t *testing.T) {
	t.Parallel()

	eng, dev := newTestEngine(t, Config{})
	openFixture(t, eng)
	ctx := context.Background()

	require.NoError(t, eng.Seek(ctx, time.Second))
	assert.Zero(t, dev.plays(), "seek while idle plays nothing")

	require.NoError(t, eng.Play(ctx))
	require.NoError(t, eng.Seek(ctx, 2*time.Second))

	assert.Equal(t, 2, dev.plays())
	assert.Less(t, eng.Position(), 500*time.Millisecond)
}

func TestEngine_StopResetsPosition(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine(t, Config{})
	openFixture(t, eng)

	require.NoError(t, eng.Stop(), "stop while idle")
	require.NoError(t, eng.Play(context.Background()))
	require.NoError(t, eng.Stop())
	require.NoError(t, eng.Stop())

	assert.Equal(t, playback.Stopped, eng.Status())
	assert.Zero(t, eng.Position())
}

func TestEngine_PlaybackEndedCallback(t *testing.T) {
	t.Parallel()

	eng, dev := newTestEngine(t, Config{})
	openFixture(t, eng)

	var (
		ended    atomic.Int32
		lastPos  atomic.Int64
		finished = make(chan struct{})
	)
	eng.OnProgress(func(pos, dur time.Duration) {
		lastPos.Store(int64(pos))
		assert.Equal(t, 3000*time.Millisecond, dur)
	})
	eng.OnPlaybackEnded(func() {
		if ended.Add(1) == 1 {
			close(finished)
		}
	})

	require.NoError(t, eng.Play(context.Background()))
	_, h := dev.last()
	h.playing.Store(false)

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("playback never ended")
	}
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, int32(1), ended.Load())
	assert.Equal(t, int64(3000*time.Millisecond), lastPos.Load())
	assert.Equal(t, playback.Stopped, eng.Status())
}

func TestEngine_LoadSeparatesAndRegisters(t *testing.T) {
	t.Parallel()

	sep := &mockSeparator{}
	eng, _ := newTestEngine(t, Config{Separator: sep})
	input := filepath.Join(t.TempDir(), "track.mp3")

	sep.On("Separate", mock.Anything, input, eng.cfg.OutputDir).Run(writesStems(t)).Return(nil).Once()

	set, err := eng.Load(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, "track", set.BaseName)
	assert.Len(t, eng.Selection(), 4)
	sep.AssertExpectations(t)
}

func TestEngine_LoadReplacesPreviousStems(t *testing.T) {
	t.Parallel()

	sep := &mockSeparator{}
	eng, _ := newTestEngine(t, Config{Separator: sep, CleanupStems: true})
	sep.On("Separate", mock.Anything, mock.Anything, mock.Anything).Run(writesStems(t)).Return(nil)

	first, err := eng.Load(context.Background(), "/music/first.wav")
	require.NoError(t, err)
	require.NoError(t, eng.Play(context.Background()))

	_, err = eng.Load(context.Background(), "/music/second.wav")
	require.NoError(t, err)

	assert.NoDirExists(t, first.Dir)
	assert.Equal(t, "second", eng.Stems().BaseName)
	assert.NotEqual(t, playback.Playing, eng.Status())
}

func TestEngine_LoadErrors(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine(t, Config{})
	_, err := eng.Load(context.Background(), "song.wav")
	require.ErrorIs(t, err, ErrNoSeparator)

	boom := errors.New("boom")
	sep := &mockSeparator{}
	sep.On("Separate", mock.Anything, mock.Anything, mock.Anything).Return(boom)
	eng2, _ := newTestEngine(t, Config{Separator: sep})

	_, err = eng2.Load(context.Background(), "song.wav")
	require.ErrorIs(t, err, boom)
	assert.Nil(t, eng2.Stems())
}

func TestEngine_OpenMissingStems(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine(t, Config{})
	_, err := eng.Open("nothing-here")

	require.ErrorIs(t, err, stems.ErrMissingStemFile)
}

func TestEngine_CloseCleansUp(t *testing.T) {
	t.Parallel()

	eng, dev := newTestEngine(t, Config{CleanupStems: true})
	set := openFixture(t, eng)
	require.NoError(t, eng.Play(context.Background()))
	_, h := dev.last()

	require.NoError(t, eng.Close())
	require.NoError(t, eng.Close())

	assert.False(t, h.IsPlaying())
	assert.True(t, dev.closed)
	_, err := os.Stat(set.Dir)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.ErrorIs(t, eng.Play(context.Background()), ErrClosed)
}
