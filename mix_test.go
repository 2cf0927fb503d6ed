// SPDX-License-Identifier: EPL-2.0

package stemdeck

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/ik5/stemdeck/audio"
	"github.com/ik5/stemdeck/formats/wav"
	"github.com/ik5/stemdeck/internal/audiotest"
	"github.com/ik5/stemdeck/mixer"
	"github.com/ik5/stemdeck/stems"
)

func registerStems(t *testing.T, sampleRate, channels, frames int) *stems.Set {
	t.Helper()

	dir := audiotest.WriteStemDir(t, t.TempDir(), "song", sampleRate, channels, frames,
		audiotest.StemSpec{Name: "vocals", Waveform: audiotest.Constant(0.25)},
		audiotest.StemSpec{Name: "drums", Waveform: audiotest.Constant(0.25)},
		audiotest.StemSpec{Name: "bass", Waveform: audiotest.Constant(0.5)},
		audiotest.StemSpec{Name: "other", Waveform: audiotest.Constant(-0.5)},
	)
	set, err := stems.Register("song", dir)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return set
}

func TestMixToWAV(t *testing.T) {
	t.Parallel()

	set := registerStems(t, 8000, 2, 8000)
	out := new(bytes.Buffer)

	err := MixToWAV(context.Background(), set, mixer.GainSelection{stems.Vocals: 0, stems.Bass: 0}, out)
	if err != nil {
		t.Fatalf("MixToWAV() error = %v", err)
	}

	src, err := wav.Decoder{}.Decode(out)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	buf, err := audio.ReadAll(src, 0)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}

	if buf.Channels != 2 || buf.SampleRate != 8000 {
		t.Errorf("got %d Hz/%d ch, want 8000 Hz/2 ch", buf.SampleRate, buf.Channels)
	}
	if buf.Duration() != time.Second {
		t.Errorf("Duration() = %v, want 1s", buf.Duration())
	}
	for i, s := range buf.Samples {
		if math.Abs(float64(s)-0.75) > 1e-3 {
			t.Fatalf("sample %d = %v, want ≈0.75", i, s)
		}
	}
}

func TestMixToWAV_EmptySelection(t *testing.T) {
	t.Parallel()

	set := registerStems(t, 8000, 1, 800)
	out := new(bytes.Buffer)

	err := MixToWAV(context.Background(), set, mixer.GainSelection{}, out)
	if !errors.Is(err, mixer.ErrEmptySelection) {
		t.Fatalf("MixToWAV() error = %v, want %v", err, mixer.ErrEmptySelection)
	}
	if out.Len() != 0 {
		t.Errorf("MixToWAV() wrote %d bytes on error", out.Len())
	}
}

func TestMixToMono16(t *testing.T) {
	t.Parallel()

	set := registerStems(t, 16000, 2, 16000)

	pcm16, rate, err := MixToMono16(context.Background(), set, mixer.GainSelection{stems.Vocals: 0, stems.Drums: 0}, 8000)
	if err != nil {
		t.Fatalf("MixToMono16() error = %v", err)
	}
	if rate != 8000 {
		t.Errorf("MixToMono16() rate = %d, want 8000", rate)
	}

	expected, tolerance := 8000, 200
	if len(pcm16) < expected-tolerance || len(pcm16) > expected+tolerance {
		t.Errorf("MixToMono16() got %d samples, want ≈%d (±%d)", len(pcm16), expected, tolerance)
	}
	for i, s := range pcm16 {
		if math.Abs(float64(s)-16383) > 200 {
			t.Fatalf("pcm16[%d] = %d, want ≈16383", i, s)
		}
	}
}

func TestMixToMono16_Cancelled(t *testing.T) {
	t.Parallel()

	set := registerStems(t, 8000, 1, 800)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := MixToMono16(ctx, set, mixer.All(set.Names()), 8000)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("MixToMono16() error = %v, want %v", err, context.Canceled)
	}
}

func TestResampleToMono16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		src      audio.Source
		dstRate  int
		expected int
		level    int16
	}{
		{"stereo sine downsample", audiotest.NewSineSource(44100, 2, 44100, 440), 8000, 8000, -1},
		{"mono constant", audiotest.NewConstantSource(16000, 1, 16000, 0.5), 8000, 8000, 16383},
		{"silence", audiotest.NewSilentSource(44100, 2, 44100), 8000, 8000, 0},
		{"upsample", audiotest.NewConstantSource(8000, 2, 8000, 0.25), 16000, 16000, 8191},
		{"empty", audiotest.NewSilentSource(44100, 2, 0), 8000, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pcm16, rate, err := ResampleToMono16(tt.src, tt.dstRate, 4096)
			if err != nil {
				t.Fatalf("ResampleToMono16() error = %v", err)
			}
			if rate != tt.dstRate {
				t.Errorf("rate = %d, want %d", rate, tt.dstRate)
			}

			tolerance := tt.expected / 40
			if len(pcm16) < tt.expected-tolerance || len(pcm16) > tt.expected+tolerance {
				t.Errorf("got %d samples, want ≈%d (±%d)", len(pcm16), tt.expected, tolerance)
			}

			if tt.level < 0 {
				return
			}
			for i, s := range pcm16 {
				if math.Abs(float64(s)-float64(tt.level)) > 200 {
					t.Fatalf("pcm16[%d] = %d, want ≈%d", i, s, tt.level)
				}
			}
		})
	}
}

func TestResampleToMono16_Clamping(t *testing.T) {
	t.Parallel()

	src := audiotest.NewMockSource(8000, 1, 99, func(sample int, _ int) float32 {
		switch sample % 3 {
		case 0:
			return 2
		case 1:
			return -2
		default:
			return 0
		}
	})

	pcm16, _, err := ResampleToMono16(src, 8000, 4096)
	if err != nil {
		t.Fatalf("ResampleToMono16() error = %v", err)
	}
	if len(pcm16) == 0 {
		t.Fatal("ResampleToMono16() returned no samples")
	}
	if pcm16[0] != 32767 {
		t.Errorf("pcm16[0] = %d, want 32767", pcm16[0])
	}
}

func TestResampleToMono16_InvalidRate(t *testing.T) {
	t.Parallel()

	_, _, err := ResampleToMono16(audiotest.NewSilentSource(8000, 1, 10), 0, 4096)
	if !errors.Is(err, audio.ErrInvalidFormat) {
		t.Fatalf("ResampleToMono16() error = %v, want %v", err, audio.ErrInvalidFormat)
	}
}

func BenchmarkResampleToMono16(b *testing.B) {
	b.ReportAllocs()

	for b.Loop() {
		src := audiotest.NewSineSource(44100, 2, 44100, 440.0)
		_, _, _ = ResampleToMono16(src, 8000, 4096)
	}
}

func BenchmarkMixToMono16(b *testing.B) {
	dir := b.TempDir()
	for _, name := range []string{"vocals", "drums", "bass", "other"} {
		path := stems.Path(dir, "song", stems.Name(name), "wav")
		if err := audiotest.WriteWAV(path, 44100, 2, audiotest.Render(2, 44100, audiotest.Sine(44100, 220, 0.3))); err != nil {
			b.Fatal(err)
		}
	}
	set, err := stems.Register("song", dir)
	if err != nil {
		b.Fatal(err)
	}
	sel := mixer.All(set.Names())

	b.ReportAllocs()
	for b.Loop() {
		_, _, _ = MixToMono16(context.Background(), set, sel, 16000)
	}
}
