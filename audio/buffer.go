// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// maxEmptyReads bounds how many consecutive (0, nil) reads ReadAll tolerates.
const maxEmptyReads = 64

// Buffer is a fully materialized waveform: interleaved float32 samples in
// [-1,1] at SampleRate with Channels channels.
type Buffer struct {
	SampleRate int
	Channels   int
	Samples    []float32
}

// NewBuffer allocates a silent buffer holding frames frames.
func NewBuffer(sampleRate, channels, frames int) *Buffer {
	return &Buffer{
		SampleRate: sampleRate,
		Channels:   channels,
		Samples:    make([]float32, frames*channels),
	}
}

// Frames returns the number of sample frames (samples per channel).
func (b *Buffer) Frames() int {
	if b == nil || b.Channels <= 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// Duration is the playing time of the buffer.
func (b *Buffer) Duration() time.Duration {
	return FramesToDuration(b.Frames(), b.sampleRate())
}

func (b *Buffer) sampleRate() int {
	if b == nil {
		return 0
	}
	return b.SampleRate
}

// Source returns a Source reading the buffer from its first sample. Each
// call returns an independent reader; the samples are not copied.
func (b *Buffer) Source() Source {
	return &bufferSource{buf: b}
}

// FramesToDuration converts a frame count at sampleRate to a duration.
func FramesToDuration(frames, sampleRate int) time.Duration {
	if sampleRate <= 0 || frames <= 0 {
		return 0
	}
	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}

// ReadAll drains src into a Buffer using reads of bufSize samples. The
// source is not closed.
func ReadAll(src Source, bufSize int) (*Buffer, error) {
	channels := src.Channels()
	if channels <= 0 || src.SampleRate() <= 0 {
		return nil, ErrInvalidFormat
	}
	if bufSize <= 0 {
		bufSize = src.BufSize()
	}
	if bufSize < channels {
		bufSize = 4096
	}
	// Keep reads frame aligned.
	bufSize -= bufSize % channels

	out := &Buffer{
		SampleRate: src.SampleRate(),
		Channels:   channels,
		Samples:    make([]float32, 0, bufSize*4),
	}
	tmp := make([]float32, bufSize)

	empty := 0
	for {
		n, err := src.ReadSamples(tmp)
		if n > 0 {
			out.Samples = append(out.Samples, tmp[:n]...)
			empty = 0
		}

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}

		if n == 0 {
			empty++
			if empty >= maxEmptyReads {
				return nil, ErrNoProgress
			}
		}
	}

	// Drop a trailing partial frame.
	out.Samples = out.Samples[:len(out.Samples)-len(out.Samples)%channels]
	return out, nil
}

type bufferSource struct {
	buf *Buffer
	pos int
}

func (s *bufferSource) SampleRate() int { return s.buf.SampleRate }
func (s *bufferSource) Channels() int   { return s.buf.Channels }
func (s *bufferSource) BufSize() int    { return 4096 }
func (s *bufferSource) Close() error    { return nil }

func (s *bufferSource) ReadSamples(dst []float32) (int, error) {
	if s.pos >= len(s.buf.Samples) {
		return 0, io.EOF
	}
	n := copy(dst, s.buf.Samples[s.pos:])
	s.pos += n
	if s.pos >= len(s.buf.Samples) {
		return n, io.EOF
	}
	return n, nil
}
