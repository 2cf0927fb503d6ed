// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWAV writes interleaved float samples as a 16-bit PCM WAV file.
func WriteWAV(path string, sampleRate, channels int, samples []float32) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	defer f.Close()

	data := make([]int, len(samples))
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		data[i] = int(s * 32767)
	}

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	if err := enc.Write(&goaudio.IntBuffer{
		Data:           data,
		Format:         &goaudio.Format{SampleRate: sampleRate, NumChannels: channels},
		SourceBitDepth: 16,
	}); err != nil {
		return fmt.Errorf("%w", err)
	}
	return enc.Close()
}

// StemSpec describes one synthetic stem file.
type StemSpec struct {
	Name     string
	Waveform Waveform
}

// WriteStemDir lays out <dir>/<base>/<name>.wav for every spec, the way a
// separator leaves its output, and returns dir.
func WriteStemDir(tb testing.TB, dir, base string, sampleRate, channels, frames int, specs ...StemSpec) string {
	tb.Helper()

	for _, s := range specs {
		path := filepath.Join(dir, base, s.Name+".wav")
		if err := WriteWAV(path, sampleRate, channels, Render(channels, frames, s.Waveform)); err != nil {
			tb.Fatalf("write stem %s: %v", s.Name, err)
		}
	}
	return dir
}
