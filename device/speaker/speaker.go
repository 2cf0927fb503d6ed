// SPDX-License-Identifier: EPL-2.0

// Package speaker plays through the platform audio API via oto. Importing
// it registers the "speaker" device.
package speaker

import (
	"context"
	"fmt"
	"sync"

	"github.com/hajimehoshi/oto/v2"
	"go.uber.org/zap"

	"github.com/ik5/stemdeck/audio"
	"github.com/ik5/stemdeck/device"
)

const (
	name = "speaker"

	defaultSampleRate = 44100
	defaultChannels   = 2
)

// oto allows a single context per process.
var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoErr  error
	otoFmt  device.Format
)

func sharedContext(format device.Format) (*oto.Context, device.Format, error) {
	otoOnce.Do(func() {
		ctx, ready, err := oto.NewContext(format.SampleRate, format.Channels, oto.FormatSignedInt16LE)
		if err != nil {
			otoErr = err
			return
		}
		<-ready
		otoCtx, otoFmt = ctx, format
	})
	return otoCtx, otoFmt, otoErr
}

type speakerDevice struct {
	logger *zap.Logger
	ctx    *oto.Context
	format device.Format
}

func newSpeakerDevice(settings device.Settings) (device.Device, error) {
	format := device.Format{SampleRate: settings.SampleRate, Channels: settings.Channels}
	if format.SampleRate <= 0 {
		format.SampleRate = defaultSampleRate
	}
	if format.Channels <= 0 {
		format.Channels = defaultChannels
	}

	ctx, format, err := sharedContext(format)
	if err != nil {
		return nil, fmt.Errorf("open oto context: %w", err)
	}

	logger := settings.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &speakerDevice{logger: logger, ctx: ctx, format: format}, nil
}

func (d *speakerDevice) Name() string          { return name }
func (d *speakerDevice) Kind() device.Kind     { return device.KindSoundCard }
func (d *speakerDevice) Format() device.Format { return d.format }

// Close is a no-op: the oto context lives for the whole process.
func (d *speakerDevice) Close() error { return nil }

func (d *speakerDevice) Play(ctx context.Context, src audio.Source) (device.Handle, error) {
	if err := ctx.Err(); err != nil {
		_ = src.Close()
		return nil, fmt.Errorf("%w", err)
	}
	if src.SampleRate() != d.format.SampleRate || src.Channels() != d.format.Channels {
		_ = src.Close()
		return nil, fmt.Errorf("%w: got %d Hz/%d ch, device runs %d Hz/%d ch", device.ErrUnsupportedFormat,
			src.SampleRate(), src.Channels(), d.format.SampleRate, d.format.Channels)
	}

	player := d.ctx.NewPlayer(device.NewPCM16Reader(src))
	player.Play()

	d.logger.Debug("speaker playback started")
	return &handle{player: player, src: src}, nil
}

type handle struct {
	mu     sync.Mutex
	player oto.Player
	src    audio.Source
	closed bool
}

func (h *handle) IsPlaying() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return !h.closed && h.player.IsPlaying()
}

func (h *handle) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	h.player.Pause()
	err := h.player.Close()
	if srcErr := h.src.Close(); err == nil {
		err = srcErr
	}
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func init() {
	device.Register(name, device.KindSoundCard, newSpeakerDevice)
}
