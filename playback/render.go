// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/ik5/stemdeck/audio"
	"github.com/ik5/stemdeck/device"
	"github.com/ik5/stemdeck/formats/wav"
)

// renderTemp writes buf as a 16-bit WAV named after the session.
func renderTemp(dir string, id uuid.UUID, buf *audio.Buffer) (string, error) {
	path := filepath.Join(dir, "stemdeck-"+id.String()+".wav")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%w", err)
	}
	if err := wav.WriteBuffer(f, buf); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("render %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("%w", err)
	}
	return path, nil
}

// openForDevice reopens a rendered file and adapts it to what the device
// accepts.
func openForDevice(decoders *audio.Registry, path string, want device.Format) (audio.Source, error) {
	src, err := decoders.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	return audio.ConvertRate(audio.ConvertChannels(src, want.Channels), want.SampleRate), nil
}

func removeTemp(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w", err)
	}
	return nil
}
