// SPDX-License-Identifier: EPL-2.0

package separator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/ik5/stemdeck/stems"
)

const (
	BackendSpleeter = "spleeter"
	BackendDemucs   = "demucs"

	lockName = ".stemdeck.lock"

	// outputTail bounds how much tool output is kept in an error.
	outputTail = 2048
)

// Separator splits a recording into stems. On success the stems are at
// <outputDir>/<base>/<stem>.<ext> where base is stems.BaseName(inputPath).
type Separator interface {
	Name() string
	Separate(ctx context.Context, inputPath, outputDir string) error
}

// Config selects and configures a backend.
type Config struct {
	Backend string
	// Binary overrides the executable; empty uses the backend name.
	Binary string
	// Model is the spleeter configuration or demucs model name.
	Model string
	// Device is passed to demucs as -d (cpu, cuda, mps).
	Device   string
	Executor CommandExecutor
	Logger   *zap.Logger
}

// New builds the separator named by cfg.Backend.
func New(cfg Config) (Separator, error) {
	r := runner{
		binary:   cfg.Binary,
		executor: cfg.Executor,
		logger:   cfg.Logger,
	}
	if r.executor == nil {
		r.executor = DefaultExecutor
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}

	switch strings.ToLower(cfg.Backend) {
	case "", BackendSpleeter:
		if r.binary == "" {
			r.binary = BackendSpleeter
		}
		return &Spleeter{runner: r, Model: defaultString(cfg.Model, "spleeter:4stems")}, nil
	case BackendDemucs:
		if r.binary == "" {
			r.binary = BackendDemucs
		}
		return &Demucs{runner: r, Model: defaultString(cfg.Model, "htdemucs"), Device: cfg.Device}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// Backends lists the supported backend names.
func Backends() []string {
	return []string{BackendDemucs, BackendSpleeter}
}

type runner struct {
	binary   string
	executor CommandExecutor
	logger   *zap.Logger
}

// run executes the tool while holding the output directory lock.
func (r runner) run(ctx context.Context, backend, inputPath, outputDir string, args []string, after func() error) error {
	info, err := os.Stat(inputPath)
	if err != nil {
		return fmt.Errorf("%w: input: %w", ErrSeparationFailed, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: input %s is a directory", ErrSeparationFailed, inputPath)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrSeparationFailed, err)
	}

	lockPath := filepath.Join(outputDir, lockName)
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrBusy, lockPath)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to release separation lock", zap.Error(err))
		}
	}()

	r.logger.Info("separating stems",
		zap.String("backend", backend),
		zap.String("input", inputPath),
		zap.String("output", outputDir),
	)

	out, err := r.executor.Command(ctx, r.binary, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s: %w: %s", ErrSeparationFailed, backend, err, tail(out))
	}
	r.logger.Debug("separator output", zap.String("backend", backend), zap.ByteString("output", out))

	if after != nil {
		if err := after(); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrSeparationFailed, backend, err)
		}
	}

	r.logger.Info("stems separated",
		zap.String("backend", backend),
		zap.String("dir", filepath.Join(outputDir, stems.BaseName(inputPath))),
	)
	return nil
}

// Spleeter runs deezer/spleeter, which already writes <out>/<base>/.
type Spleeter struct {
	runner
	Model string
}

func (s *Spleeter) Name() string { return BackendSpleeter }

func (s *Spleeter) Separate(ctx context.Context, inputPath, outputDir string) error {
	args := []string{"separate", "-p", s.Model, "-o", outputDir, inputPath}
	return s.run(ctx, BackendSpleeter, inputPath, outputDir, args, nil)
}

// Demucs runs facebookresearch/demucs. It writes <out>/<model>/<base>/,
// which is moved up to <out>/<base>/ afterwards.
type Demucs struct {
	runner
	Model  string
	Device string
}

func (d *Demucs) Name() string { return BackendDemucs }

func (d *Demucs) Separate(ctx context.Context, inputPath, outputDir string) error {
	args := []string{"-n", d.Model, "-o", outputDir}
	if d.Device != "" {
		args = append(args, "-d", d.Device)
	}
	args = append(args, inputPath)

	return d.run(ctx, BackendDemucs, inputPath, outputDir, args, func() error {
		return d.relocate(inputPath, outputDir)
	})
}

func (d *Demucs) relocate(inputPath, outputDir string) error {
	base := stems.BaseName(inputPath)
	modelDir := filepath.Join(outputDir, d.Model)
	from := filepath.Join(modelDir, base)
	to := filepath.Join(outputDir, base)

	if _, err := os.Stat(from); err != nil {
		return fmt.Errorf("demucs output: %w", err)
	}
	if err := os.RemoveAll(to); err != nil {
		return fmt.Errorf("%w", err)
	}
	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("%w", err)
	}
	// Only succeeds once the model directory is empty.
	_ = os.Remove(modelDir)
	return nil
}

func defaultString(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func tail(out []byte) string {
	s := strings.TrimSpace(string(out))
	if len(s) > outputTail {
		s = "..." + s[len(s)-outputTail:]
	}
	return s
}
