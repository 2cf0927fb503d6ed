// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/ik5/stemdeck/internal/audiotest"
)

func drain(t *testing.T, src Source, bufSize int) []float32 {
	t.Helper()

	buf := make([]float32, bufSize)
	var out []float32
	for {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
}

func TestMonoMixer_Stereo(t *testing.T) {
	t.Parallel()

	wave := func(_ int, ch int) float32 {
		if ch == 0 {
			return 0.8
		}
		return 0.2
	}
	m := NewMonoMixer(audiotest.NewMockSource(8000, 2, 100, wave))

	if m.Channels() != 1 {
		t.Errorf("Channels() = %d, want 1", m.Channels())
	}

	out := drain(t, m, 32)
	if len(out) != 100 {
		t.Fatalf("got %d samples, want 100", len(out))
	}
	for i, s := range out {
		if math.Abs(float64(s-0.5)) > 1e-6 {
			t.Fatalf("out[%d] = %v, want 0.5", i, s)
		}
	}
}

func TestMonoMixer_Surround(t *testing.T) {
	t.Parallel()

	wave := func(_ int, ch int) float32 { return float32(ch) / 10 }
	out := drain(t, NewMonoMixer(audiotest.NewMockSource(8000, 6, 50, wave)), 16)

	want := float32(0+1+2+3+4+5) / 10 / 6
	for i, s := range out {
		if math.Abs(float64(s-want)) > 1e-6 {
			t.Fatalf("out[%d] = %v, want %v", i, s, want)
		}
	}
}

func TestChannelDuplicator(t *testing.T) {
	t.Parallel()

	d := NewChannelDuplicator(audiotest.NewMockSource(8000, 1, 10, audiotest.Ramp(10, 1)), 2)
	out := drain(t, d, 8)

	if len(out) != 20 {
		t.Fatalf("got %d samples, want 20", len(out))
	}
	for f := range 10 {
		if out[2*f] != out[2*f+1] {
			t.Errorf("frame %d: left %v != right %v", f, out[2*f], out[2*f+1])
		}
	}

	if _, err := d.ReadSamples(make([]float32, 3)); !errors.Is(err, ErrInvalidDstSize) {
		t.Errorf("odd dst error = %v, want %v", err, ErrInvalidDstSize)
	}
}

func TestConvertChannels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		have int
		want int
		out  int
	}{
		{"keep", 2, 2, 2},
		{"zero keeps", 2, 0, 2},
		{"downmix", 2, 1, 1},
		{"upmix", 1, 2, 2},
		{"surround to stereo", 6, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := audiotest.NewSilentSource(8000, tt.have, 10)
			if got := ConvertChannels(src, tt.want).Channels(); got != tt.out {
				t.Errorf("Channels() = %d, want %d", got, tt.out)
			}
		})
	}
}

func TestConvertRate(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSilentSource(44100, 1, 10)
	if ConvertRate(src, 44100) != Source(src) {
		t.Error("matching rate wrapped the source")
	}
	if ConvertRate(src, 0) != Source(src) {
		t.Error("zero rate wrapped the source")
	}
	if got := ConvertRate(src, 48000).SampleRate(); got != 48000 {
		t.Errorf("SampleRate() = %d, want 48000", got)
	}
}
