// SPDX-License-Identifier: EPL-2.0

package device

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ik5/stemdeck/audio"
)

const nullName = "null"

// nullDevice discards audio but reports playing for as long as the audio
// would take on a real sound card.
type nullDevice struct {
	logger *zap.Logger
	format Format
	now    func() time.Time
}

func newNullDevice(settings Settings) (Device, error) {
	return &nullDevice{
		logger: settings.logger(),
		format: Format{SampleRate: settings.SampleRate, Channels: settings.Channels},
		now:    time.Now,
	}, nil
}

func (d *nullDevice) Name() string   { return nullName }
func (d *nullDevice) Kind() Kind     { return KindNone }
func (d *nullDevice) Format() Format { return d.format }
func (d *nullDevice) Close() error   { return nil }

func (d *nullDevice) Play(ctx context.Context, src audio.Source) (Handle, error) {
	defer src.Close()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	buf, err := audio.ReadAll(src, 0)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	h := &nullHandle{now: d.now, deadline: d.now().Add(buf.Duration())}
	d.logger.Debug("null playback started", zap.Duration("duration", buf.Duration()))
	return h, nil
}

type nullHandle struct {
	mu       sync.Mutex
	now      func() time.Time
	deadline time.Time
	stopped  bool
}

func (h *nullHandle) IsPlaying() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return !h.stopped && h.now().Before(h.deadline)
}

func (h *nullHandle) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.stopped = true
	return nil
}

func init() {
	Register(nullName, KindNone, newNullDevice)
}
