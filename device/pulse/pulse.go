// SPDX-License-Identifier: EPL-2.0

// Package pulse plays through a PulseAudio (or PipeWire) server using the
// native protocol, without cgo. Importing it registers the "pulse" device.
package pulse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jfreymuth/pulse"
	"go.uber.org/zap"

	"github.com/ik5/stemdeck/audio"
	"github.com/ik5/stemdeck/device"
)

const (
	name = "pulse"

	defaultSampleRate = 44100
	defaultLatency    = 100 * time.Millisecond
)

type pulseDevice struct {
	logger  *zap.Logger
	client  *pulse.Client
	format  device.Format
	latency time.Duration
}

func newPulseDevice(settings device.Settings) (device.Device, error) {
	logger := settings.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	format := device.Format{SampleRate: settings.SampleRate, Channels: settings.Channels}
	if format.SampleRate <= 0 {
		format.SampleRate = defaultSampleRate
	}
	switch format.Channels {
	case 0:
		format.Channels = 2
	case 1, 2:
	default:
		return nil, fmt.Errorf("%w: %d channels", device.ErrUnsupportedFormat, format.Channels)
	}

	latency := settings.Latency
	if latency <= 0 {
		latency = defaultLatency
	}

	client, err := pulse.NewClient(pulse.ClientApplicationName("stemdeck"))
	if err != nil {
		return nil, fmt.Errorf("connect to pulse server: %w", err)
	}

	return &pulseDevice{logger: logger, client: client, format: format, latency: latency}, nil
}

func (d *pulseDevice) Name() string          { return name }
func (d *pulseDevice) Kind() device.Kind     { return device.KindSoundCard }
func (d *pulseDevice) Format() device.Format { return d.format }

func (d *pulseDevice) Close() error {
	if d.client != nil {
		d.client.Close()
		d.client = nil
	}
	return nil
}

func (d *pulseDevice) Play(ctx context.Context, src audio.Source) (device.Handle, error) {
	if err := ctx.Err(); err != nil {
		_ = src.Close()
		return nil, fmt.Errorf("%w", err)
	}
	if d.client == nil {
		_ = src.Close()
		return nil, device.ErrClosed
	}
	if src.SampleRate() != d.format.SampleRate || src.Channels() != d.format.Channels {
		_ = src.Close()
		return nil, fmt.Errorf("%w: got %d Hz/%d ch, device runs %d Hz/%d ch", device.ErrUnsupportedFormat,
			src.SampleRate(), src.Channels(), d.format.SampleRate, d.format.Channels)
	}

	layout := pulse.PlaybackStereo
	if d.format.Channels == 1 {
		layout = pulse.PlaybackMono
	}

	h := &handle{src: src}
	h.playing.Store(true)

	stream, err := d.client.NewPlayback(pulse.Float32Reader(h.read),
		pulse.PlaybackSampleRate(d.format.SampleRate),
		layout,
		pulse.PlaybackLatency(d.latency.Seconds()),
	)
	if err != nil {
		_ = src.Close()
		return nil, fmt.Errorf("create pulse stream: %w", err)
	}
	h.stream = stream

	stream.Start()
	go h.waitDrain()

	d.logger.Debug("pulse playback started", zap.Duration("latency", d.latency))
	return h, nil
}

type handle struct {
	mu      sync.Mutex
	stream  *pulse.PlaybackStream
	src     audio.Source
	closed  bool
	eof     atomic.Bool

	playing atomic.Bool
}

// read runs on the pulse client goroutine.
func (h *handle) read(out []float32) (int, error) {
	if h.eof.Load() {
		return 0, pulse.EndOfData
	}
	n, err := h.src.ReadSamples(out)
	if errors.Is(err, io.EOF) {
		h.eof.Store(true)
		if n == 0 {
			return 0, pulse.EndOfData
		}
		return n, nil
	}
	if err != nil {
		h.eof.Store(true)
		return n, pulse.EndOfData
	}
	return n, nil
}

// waitDrain flips playing off once the server has played everything.
func (h *handle) waitDrain() {
	h.stream.Drain()
	h.playing.Store(false)
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

	h.stream.Stop()
	h.stream.Close()

	if err := h.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func init() {
	device.Register(name, device.KindSoundCard, newPulseDevice)
}
