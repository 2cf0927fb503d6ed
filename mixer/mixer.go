// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/ik5/stemdeck/audio"
	"github.com/ik5/stemdeck/stems"
	"github.com/ik5/stemdeck/utils"
)

const defaultBufSize = 8192

// Mixer renders a gain selection of a stem set into one buffer.
type Mixer struct {
	logger  *zap.Logger
	bufSize int
}

type Option func(*Mixer)

func WithLogger(l *zap.Logger) Option {
	return func(m *Mixer) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithBufferSize sets the decode read size in samples.
func WithBufferSize(n int) Option {
	return func(m *Mixer) {
		if n > 0 {
			m.bufSize = n
		}
	}
}

func New(opts ...Option) *Mixer {
	m := &Mixer{
		logger:  zap.NewNop(),
		bufSize: defaultBufSize,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Mix is New().Mix.
func Mix(ctx context.Context, set *stems.Set, sel GainSelection) (*audio.Buffer, error) {
	return New().Mix(ctx, set, sel)
}

// Mix decodes every selected stem, scales it by 10^(dB/20) and sums it into
// the output with saturating addition. Stems are accumulated in set order,
// so the result is reproducible bit for bit. The output is as long as the
// longest stem; shorter stems contribute silence past their end.
func (m *Mixer) Mix(ctx context.Context, set *stems.Set, sel GainSelection) (*audio.Buffer, error) {
	if len(sel) == 0 {
		return nil, ErrEmptySelection
	}
	if set == nil {
		return nil, fmt.Errorf("%w: no stem set registered", stems.ErrMissingStemFile)
	}
	for name, gain := range sel {
		if _, ok := set.Lookup(name); !ok {
			return nil, fmt.Errorf("%w: %q is not part of %s", stems.ErrMissingStemFile, name, set.BaseName)
		}
		if math.IsNaN(gain) || math.IsInf(gain, 0) {
			return nil, fmt.Errorf("%w: gain %v for %s", ErrInvalidSelection, gain, name)
		}
	}

	started := time.Now()
	out := audio.NewBuffer(set.Format.SampleRate, set.Format.Channels, 0)
	selected := sel.Selected(set.Names())

	for _, name := range selected {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w", err)
		}

		buf, err := m.load(set, name)
		if err != nil {
			return nil, err
		}

		gain := audio.DBToGain(sel[name])
		accumulate(out, buf.Samples, gain)

		m.logger.Debug("stem mixed",
			zap.String("stem", string(name)),
			zap.Float64("gain_db", sel[name]),
			zap.Duration("duration", buf.Duration()),
		)
	}

	m.logger.Info("mix rendered",
		zap.String("base", set.BaseName),
		zap.Stringer("selection", sel),
		zap.Duration("duration", out.Duration()),
		zap.Duration("took", time.Since(started)),
	)
	return out, nil
}

func (m *Mixer) load(set *stems.Set, name stems.Name) (*audio.Buffer, error) {
	src, err := set.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	defer src.Close()

	if src.SampleRate() != set.Format.SampleRate || src.Channels() != set.Format.Channels {
		return nil, fmt.Errorf("%w: %s changed to %d Hz/%d ch since registration",
			stems.ErrInvalidAudioFormat, name, src.SampleRate(), src.Channels())
	}

	buf, err := audio.ReadAll(src, m.bufSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", stems.ErrInvalidAudioFormat, name, err)
	}
	return buf, nil
}

// accumulate adds src*gain into dst, growing dst with silence when src is
// longer. Each product and each addition saturates at full scale.
func accumulate(dst *audio.Buffer, src []float32, gain float32) {
	if len(src) > len(dst.Samples) {
		dst.Samples = append(dst.Samples, make([]float32, len(src)-len(dst.Samples))...)
	}
	for i, s := range src {
		dst.Samples[i] = utils.SaturatingAdd(dst.Samples[i], utils.ClampProduct(s, gain))
	}
}
