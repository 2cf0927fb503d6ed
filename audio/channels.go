// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// MonoMixer downmixes any channel layout to mono by averaging each frame.
type MonoMixer struct {
	src Source
	tmp []float32
}

func NewMonoMixer(src Source) *MonoMixer {
	return &MonoMixer{
		src: src,
		tmp: make([]float32, 4096),
	}
}

func (m *MonoMixer) SampleRate() int { return m.src.SampleRate() }
func (m *MonoMixer) Channels() int   { return 1 }
func (m *MonoMixer) BufSize() int    { return m.src.BufSize() }
func (m *MonoMixer) Close() error {
	if err := m.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (m *MonoMixer) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	channels := m.src.Channels()
	if channels == 1 {
		return m.src.ReadSamples(dst)
	}

	needed := len(dst) * channels
	if cap(m.tmp) < needed {
		m.tmp = make([]float32, max(needed, 8192))
	}
	m.tmp = m.tmp[:needed]

	n, err := m.src.ReadSamples(m.tmp)
	if n == 0 {
		return 0, err
	}

	frames := n / channels
	switch channels {
	case 2:
		for f := range frames {
			idx := f << 1
			dst[f] = (m.tmp[idx] + m.tmp[idx+1]) * 0.5
		}
	default:
		inv := float32(1.0) / float32(channels)
		for f := range frames {
			var sum float32
			base := f * channels
			for c := range channels {
				sum += m.tmp[base+c]
			}
			dst[f] = sum * inv
		}
	}

	return frames, err
}

// ChannelDuplicator spreads a mono source across n identical channels.
type ChannelDuplicator struct {
	src      Source
	channels int
	tmp      []float32
}

func NewChannelDuplicator(src Source, channels int) *ChannelDuplicator {
	return &ChannelDuplicator{
		src:      src,
		channels: channels,
		tmp:      make([]float32, 4096),
	}
}

func (d *ChannelDuplicator) SampleRate() int { return d.src.SampleRate() }
func (d *ChannelDuplicator) Channels() int   { return d.channels }
func (d *ChannelDuplicator) BufSize() int    { return d.src.BufSize() }
func (d *ChannelDuplicator) Close() error {
	if err := d.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (d *ChannelDuplicator) ReadSamples(dst []float32) (int, error) {
	if len(dst)%d.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	frames := len(dst) / d.channels
	if frames == 0 {
		return 0, nil
	}
	if cap(d.tmp) < frames {
		d.tmp = make([]float32, frames)
	}
	d.tmp = d.tmp[:frames]

	n, err := d.src.ReadSamples(d.tmp)
	for f := range n {
		base := f * d.channels
		for c := range d.channels {
			dst[base+c] = d.tmp[f]
		}
	}
	return n * d.channels, err
}

// ConvertChannels adapts src to the requested channel count. Mono sources
// are duplicated, anything else is averaged down to mono first. A zero or
// matching count returns src unchanged.
func ConvertChannels(src Source, channels int) Source {
	have := src.Channels()
	switch {
	case channels <= 0 || channels == have:
		return src
	case channels == 1:
		return NewMonoMixer(src)
	case have == 1:
		return NewChannelDuplicator(src, channels)
	default:
		return NewChannelDuplicator(NewMonoMixer(src), channels)
	}
}

// ConvertRate resamples src to sampleRate. A zero or matching rate returns
// src unchanged.
func ConvertRate(src Source, sampleRate int) Source {
	if sampleRate <= 0 || sampleRate == src.SampleRate() {
		return src
	}
	return NewResampler(src, sampleRate)
}
