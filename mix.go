// SPDX-License-Identifier: EPL-2.0

package stemdeck

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ik5/stemdeck/audio"
	"github.com/ik5/stemdeck/formats/wav"
	"github.com/ik5/stemdeck/mixer"
	"github.com/ik5/stemdeck/stems"
	"github.com/ik5/stemdeck/utils"
)

const defaultBufferSize = 4096

// MixToWAV mixes sel from set and writes it to w as 16-bit PCM at the
// stems' own rate and channel count.
func MixToWAV(ctx context.Context, set *stems.Set, sel mixer.GainSelection, w io.Writer) error {
	buf, err := mixer.Mix(ctx, set, sel)
	if err != nil {
		return err
	}
	if err := wav.WriteBuffer(w, buf); err != nil {
		return fmt.Errorf("write mix: %w", err)
	}
	return nil
}

// MixToMono16 mixes sel from set, resamples it to targetRate, folds it to
// mono and returns 16-bit PCM.
func MixToMono16(ctx context.Context, set *stems.Set, sel mixer.GainSelection, targetRate int) ([]int16, int, error) {
	buf, err := mixer.Mix(ctx, set, sel)
	if err != nil {
		return nil, targetRate, err
	}
	return ResampleToMono16(buf.Source(), targetRate, defaultBufferSize)
}

// ResampleToMono16 runs src through a resampler and a mono mixer and
// collects the result as 16-bit PCM. Samples are clipped to [-1,1].
//
//	src, _ := decoder.Decode(file)
//	pcm16, rate, err := stemdeck.ResampleToMono16(src, 8000, 4096)
func ResampleToMono16(src audio.Source, targetRate int, bufferSize int) ([]int16, int, error) {
	if targetRate <= 0 {
		return nil, targetRate, audio.ErrInvalidFormat
	}
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}

	resampler := audio.NewResampler(src, targetRate)
	mono := audio.NewMonoMixer(resampler)

	// Start with about two seconds and grow as needed.
	pcm16 := make([]int16, 0, targetRate*2)
	buf := make([]float32, bufferSize)

	for {
		n, err := mono.ReadSamples(buf)
		for _, x := range buf[:n] {
			pcm16 = append(pcm16, utils.Float32ToInt16(x))
		}

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, targetRate, fmt.Errorf("%w", err)
		}
	}

	return pcm16, targetRate, nil
}
