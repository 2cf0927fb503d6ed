// SPDX-License-Identifier: EPL-2.0

package device

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ik5/stemdeck/audio"
	"github.com/ik5/stemdeck/formats/wav"
)

const fileName = "file"

// fileDevice renders every playback into a WAV file. Playback completes as
// soon as the file is written.
type fileDevice struct {
	logger *zap.Logger
	path   string
	format Format
}

func newFileDevice(settings Settings) (Device, error) {
	if settings.Filepath == "" {
		return nil, errors.Wrap(ErrUnsupportedFormat, "file device needs an output path")
	}
	if ext := strings.ToLower(filepath.Ext(settings.Filepath)); ext != ".wav" {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "file extension %q", ext)
	}

	return &fileDevice{
		logger: settings.logger(),
		path:   settings.Filepath,
		format: Format{SampleRate: settings.SampleRate, Channels: settings.Channels},
	}, nil
}

func (d *fileDevice) Name() string   { return fileName }
func (d *fileDevice) Kind() Kind     { return KindFile }
func (d *fileDevice) Format() Format { return d.format }
func (d *fileDevice) Close() error   { return nil }

func (d *fileDevice) Play(ctx context.Context, src audio.Source) (Handle, error) {
	defer src.Close()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	buf, err := audio.ReadAll(src, 0)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	f, err := os.Create(d.path)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	if err := wav.WriteBuffer(f, buf); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write %s: %w", d.path, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	d.logger.Info("mix written",
		zap.String("path", d.path),
		zap.Duration("duration", buf.Duration()),
	)
	return finishedHandle{}, nil
}

type finishedHandle struct{}

func (finishedHandle) IsPlaying() bool { return false }
func (finishedHandle) Stop() error     { return nil }

func init() {
	Register(fileName, KindFile, newFileDevice)
}
