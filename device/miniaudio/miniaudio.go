// SPDX-License-Identifier: EPL-2.0

// Package miniaudio plays through miniaudio via malgo. Importing it
// registers the "miniaudio" device.
package miniaudio

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
	"go.uber.org/zap"

	"github.com/ik5/stemdeck/audio"
	"github.com/ik5/stemdeck/device"
)

const (
	name = "miniaudio"

	defaultSampleRate = 44100
	defaultChannels   = 2
)

type miniaudioDevice struct {
	logger *zap.Logger
	mctx   *malgo.AllocatedContext
	format device.Format
}

func newMiniaudioDevice(settings device.Settings) (device.Device, error) {
	logger := settings.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var backends []malgo.Backend
	switch runtime.GOOS {
	case "linux":
		backends = []malgo.Backend{malgo.BackendPulseaudio, malgo.BackendAlsa}
	case "windows":
		backends = []malgo.Backend{malgo.BackendWasapi}
	case "darwin":
		backends = []malgo.Backend{malgo.BackendCoreaudio}
	}

	mctx, err := malgo.InitContext(backends, malgo.ContextConfig{}, func(message string) {
		logger.Debug("miniaudio", zap.String("message", message))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	format := device.Format{SampleRate: settings.SampleRate, Channels: settings.Channels}
	if format.SampleRate <= 0 {
		format.SampleRate = defaultSampleRate
	}
	if format.Channels <= 0 {
		format.Channels = defaultChannels
	}

	return &miniaudioDevice{logger: logger, mctx: mctx, format: format}, nil
}

func (d *miniaudioDevice) Name() string          { return name }
func (d *miniaudioDevice) Kind() device.Kind     { return device.KindSoundCard }
func (d *miniaudioDevice) Format() device.Format { return d.format }

func (d *miniaudioDevice) Close() error {
	if d.mctx == nil {
		return nil
	}
	err := d.mctx.Uninit()
	d.mctx.Free()
	d.mctx = nil
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (d *miniaudioDevice) Play(ctx context.Context, src audio.Source) (device.Handle, error) {
	if err := ctx.Err(); err != nil {
		_ = src.Close()
		return nil, fmt.Errorf("%w", err)
	}
	if d.mctx == nil {
		_ = src.Close()
		return nil, device.ErrClosed
	}
	if src.SampleRate() != d.format.SampleRate || src.Channels() != d.format.Channels {
		_ = src.Close()
		return nil, fmt.Errorf("%w: got %d Hz/%d ch, device runs %d Hz/%d ch", device.ErrUnsupportedFormat,
			src.SampleRate(), src.Channels(), d.format.SampleRate, d.format.Channels)
	}

	h := &handle{src: src, reader: device.NewPCM16Reader(src)}
	h.playing.Store(true)

	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatS16
	cfg.Playback.Channels = uint32(d.format.Channels)
	cfg.SampleRate = uint32(d.format.SampleRate)
	cfg.Alsa.NoMMap = 1

	dev, err := malgo.InitDevice(d.mctx.Context, cfg, malgo.DeviceCallbacks{
		Data: h.fill,
		Stop: func() { h.playing.Store(false) },
	})
	if err != nil {
		_ = src.Close()
		return nil, fmt.Errorf("init playback device: %w", err)
	}
	h.dev = dev

	if err := dev.Start(); err != nil {
		dev.Uninit()
		_ = src.Close()
		return nil, fmt.Errorf("start playback device: %w", err)
	}

	d.logger.Debug("miniaudio playback started",
		zap.Int("sample_rate", d.format.SampleRate),
		zap.Int("channels", d.format.Channels),
	)
	return h, nil
}

type handle struct {
	mu     sync.Mutex
	dev    *malgo.Device
	src    audio.Source
	reader io.Reader
	closed bool

	playing atomic.Bool
	// drained is only touched by fill.
	drained bool
}

// fill runs on the miniaudio thread. Once the source is drained the rest of
// every buffer is silence. The handle reports not playing one callback after
// the last samples were queued, so Stop cannot cut off the final period.
func (h *handle) fill(out, _ []byte, _ uint32) {
	n := 0
	switch {
	case h.drained:
		h.playing.Store(false)
	case h.playing.Load():
		var err error
		n, err = io.ReadFull(h.reader, out)
		if err != nil {
			h.drained = true
		}
	}
	clear(out[n:])
}

func (h *handle) IsPlaying() bool {
	return h.playing.Load()
}

func (h *handle) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	h.playing.Store(false)

	err := h.dev.Stop()
	h.dev.Uninit()
	if srcErr := h.src.Close(); err == nil {
		err = srcErr
	}
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func init() {
	device.Register(name, device.KindSoundCard, newMiniaudioDevice)
}
