// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/stemdeck/utils"
)

// Resampler streams from src to a target sample rate using Catmull-Rom
// interpolation over a four frame window. Channel count is preserved.
// When downsampling a one-pole low-pass filter is applied to the input.
type Resampler struct {
	src      Source
	dstRate  int
	step     float64 // source frames consumed per output frame
	channels int

	// window[0] = t-1, window[1] = t0, window[2] = t+1, window[3] = t+2
	window [4][]float32
	filled [4]bool
	pos    float64

	frame  []float32
	eof    bool
	primed bool

	lowPass bool
	alpha   float32
	state   []float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	step := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		step:     step,
		channels: channels,
		frame:    make([]float32, channels),
		lowPass:  step > 1.0,
		alpha:    0.5,
		state:    make([]float32, channels),
	}
	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}
	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }
func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// readFrame reads exactly one frame into r.frame. ok reports whether a
// frame was read.
func (r *Resampler) readFrame() (ok bool, err error) {
	n, err := r.src.ReadSamples(r.frame)
	if n > 0 && r.lowPass {
		for c := range r.channels {
			r.frame[c] = r.alpha*r.frame[c] + (1-r.alpha)*r.state[c]
			r.state[c] = r.frame[c]
		}
	}
	if errors.Is(err, io.EOF) {
		r.eof = true
		return n > 0, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w", err)
	}
	return n > 0, nil
}

func (r *Resampler) prime() error {
	r.primed = true

	if r.lowPass {
		// Seed the filter with the first frame to avoid a fade-in.
		n, err := r.src.ReadSamples(r.frame)
		if errors.Is(err, io.EOF) {
			r.eof = true
		} else if err != nil {
			return fmt.Errorf("%w", err)
		}
		if n == 0 {
			return io.EOF
		}
		copy(r.state, r.frame)
	} else {
		ok, err := r.readFrame()
		if err != nil {
			return err
		}
		if !ok {
			return io.EOF
		}
	}

	// The first frame doubles as its own predecessor.
	copy(r.window[0], r.frame)
	copy(r.window[1], r.frame)
	r.filled[1] = true

	for i := 2; i < len(r.window); i++ {
		ok := false
		if !r.eof {
			var err error
			if ok, err = r.readFrame(); err != nil {
				return err
			}
		}
		if ok {
			copy(r.window[i], r.frame)
			r.filled[i] = true
		} else {
			copy(r.window[i], r.window[i-1])
		}
	}

	// A single frame source still yields that frame once.
	r.filled[2] = true
	return nil
}

func (r *Resampler) advance() error {
	copy(r.window[0], r.window[1])
	copy(r.window[1], r.window[2])
	copy(r.window[2], r.window[3])
	r.filled[0], r.filled[1], r.filled[2] = r.filled[1], r.filled[2], r.filled[3]

	if r.eof {
		r.filled[3] = false
		if !r.filled[2] {
			return io.EOF
		}
		return nil
	}

	ok, err := r.readFrame()
	if err != nil {
		return err
	}
	r.filled[3] = ok
	if ok {
		copy(r.window[3], r.frame)
	} else if !r.filled[2] {
		return io.EOF
	}
	return nil
}

// ReadSamples produces samples at the target rate. len(dst) must be a
// multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	frames := len(dst) / r.channels
	written := 0
	for written < frames {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			if err := r.advance(); err != nil {
				if errors.Is(err, io.EOF) {
					return written * r.channels, io.EOF
				}
				return written * r.channels, err
			}
		}

		if !r.filled[1] || !r.filled[2] {
			return written * r.channels, io.EOF
		}

		x := float32(r.pos)
		for c := range r.channels {
			y0 := r.window[1][c]
			if r.filled[0] {
				y0 = r.window[0][c]
			}
			y3 := r.window[2][c]
			if r.filled[3] {
				y3 = r.window[3][c]
			}
			dst[written*r.channels+c] = utils.CubicInterpolate(y0, r.window[1][c], r.window[2][c], y3, x)
		}
		written++
		r.pos += r.step
	}

	return written * r.channels, nil
}
