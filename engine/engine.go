// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ik5/stemdeck/audio"
	"github.com/ik5/stemdeck/device"
	"github.com/ik5/stemdeck/mixer"
	"github.com/ik5/stemdeck/playback"
	"github.com/ik5/stemdeck/separator"
	"github.com/ik5/stemdeck/stems"
)

// Config wires an Engine. Device is required; Separator is only needed by
// Load.
type Config struct {
	OutputDir string
	Separator separator.Separator
	Device    device.Device

	// StemOptions are passed to stems.Register (names, extension, decoders).
	StemOptions []stems.Option
	Mixer       *mixer.Mixer

	PollInterval time.Duration
	TempDir      string

	// CleanupStems removes a set's directory when another recording is
	// loaded and on Close.
	CleanupStems bool

	Logger *zap.Logger
}

// Engine is the caller-facing surface: it holds the current stem set and
// gain selection, renders mixes and drives a playback.Controller.
type Engine struct {
	cfg    Config
	ctrl   *playback.Controller
	mixer  *mixer.Mixer
	logger *zap.Logger

	// mu serializes operations. Callbacks run on the controller's poll
	// goroutine and never take it.
	mu        sync.Mutex
	set       *stems.Set
	selection mixer.GainSelection
	closed    bool
}

func New(cfg Config) (*Engine, error) {
	if cfg.Device == nil {
		return nil, fmt.Errorf("%w: no device", playback.ErrPlaybackDevice)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	m := cfg.Mixer
	if m == nil {
		m = mixer.New(mixer.WithLogger(logger))
	}

	ctrlOpts := []playback.Option{
		playback.WithLogger(logger),
		playback.WithPollInterval(cfg.PollInterval),
	}
	if cfg.TempDir != "" {
		ctrlOpts = append(ctrlOpts, playback.WithTempDir(cfg.TempDir))
	}

	return &Engine{
		cfg:       cfg,
		ctrl:      playback.NewController(cfg.Device, ctrlOpts...),
		mixer:     m,
		logger:    logger,
		selection: mixer.GainSelection{},
	}, nil
}

// Load separates inputPath into the output directory and registers the
// result. The selection is reset to every stem at 0 dB.
func (e *Engine) Load(ctx context.Context, inputPath string) (*stems.Set, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, ErrClosed
	}
	if e.cfg.Separator == nil {
		return nil, ErrNoSeparator
	}

	base := stems.BaseName(inputPath)
	if err := e.ctrl.Stop(); err != nil {
		e.logger.Warn("stopping playback before load", zap.Error(err))
	}
	if e.cfg.CleanupStems && e.set != nil && e.set.BaseName != base {
		e.removeSet()
	}

	e.logger.Info("separating",
		zap.String("input", inputPath),
		zap.String("backend", e.cfg.Separator.Name()),
	)
	if err := e.cfg.Separator.Separate(ctx, inputPath, e.cfg.OutputDir); err != nil {
		return nil, fmt.Errorf("separate %s: %w", inputPath, err)
	}

	return e.register(base)
}

// Open registers stems separated earlier without running the separator.
func (e *Engine) Open(baseName string) (*stems.Set, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, ErrClosed
	}
	if err := e.ctrl.Stop(); err != nil {
		e.logger.Warn("stopping playback before open", zap.Error(err))
	}
	return e.register(baseName)
}

func (e *Engine) register(base string) (*stems.Set, error) {
	set, err := stems.Register(base, e.cfg.OutputDir, e.cfg.StemOptions...)
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", base, err)
	}

	e.set = set
	e.selection = mixer.All(set.Names())
	e.logger.Info("stems registered",
		zap.String("base", set.BaseName),
		zap.String("dir", set.Dir),
		zap.Int("sample_rate", set.Format.SampleRate),
		zap.Int("channels", set.Format.Channels),
	)
	return set, nil
}

// Stems returns the current set, nil before Load or Open.
func (e *Engine) Stems() *stems.Set {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.set
}

// Selection returns a copy of the current gain selection.
func (e *Engine) Selection() mixer.GainSelection {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.selection.Clone()
}

// SetSelection replaces the gain selection. If it differs from the current
// one while playing, playback restarts from the beginning with a new mix.
// An empty selection stops playback and returns mixer.ErrEmptySelection.
// A stem missing from the open set is rejected with stems.ErrMissingStemFile
// and the previous selection is kept.
func (e *Engine) SetSelection(ctx context.Context, sel mixer.GainSelection) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	if e.set != nil {
		for name := range sel {
			if _, ok := e.set.Lookup(name); !ok {
				return fmt.Errorf("%w: %q is not part of %s", stems.ErrMissingStemFile, name, e.set.BaseName)
			}
		}
	}

	changed := !e.selection.Equal(sel)
	e.selection = sel.Clone()
	if !changed || e.ctrl.Status() != playback.Playing {
		return nil
	}

	e.logger.Info("selection changed while playing, restarting",
		zap.Stringer("selection", e.selection),
	)
	if err := e.restart(ctx); err != nil {
		if stopErr := e.ctrl.Stop(); stopErr != nil {
			e.logger.Warn("stopping after failed restart", zap.Error(stopErr))
		}
		return err
	}
	return nil
}

// Play mixes the current selection and plays it from the beginning,
// replacing any session in progress.
func (e *Engine) Play(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	return e.restart(ctx)
}

// Seek cannot reposition the device. A seek while playing restarts the
// current selection from position 0; otherwise it does nothing.
func (e *Engine) Seek(ctx context.Context, pos time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	if e.ctrl.Status() != playback.Playing {
		return nil
	}

	e.logger.Info("seek served as restart from 0",
		zap.Duration("requested", pos),
		zap.Duration("position", e.ctrl.Position()),
	)
	return e.restart(ctx)
}

func (e *Engine) restart(ctx context.Context) error {
	buf, err := e.mix(ctx)
	if err != nil {
		return err
	}
	return e.ctrl.Restart(ctx, buf)
}

func (e *Engine) mix(ctx context.Context) (*audio.Buffer, error) {
	if len(e.selection) == 0 {
		return nil, mixer.ErrEmptySelection
	}
	if e.set == nil {
		return nil, ErrNoStems
	}
	return e.mixer.Mix(ctx, e.set, e.selection)
}

// Mix renders the current selection without playing it.
func (e *Engine) Mix(ctx context.Context) (*audio.Buffer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.mix(ctx)
}

// Stop halts playback. It is a no-op when nothing is playing.
func (e *Engine) Stop() error {
	return e.ctrl.Stop()
}

// OnProgress registers fn to receive (position, duration) while playing.
// fn runs on the poll goroutine and may call Stop. A call already being
// delivered when Stop is called may still be running after Stop returns;
// none starts afterwards.
func (e *Engine) OnProgress(fn func(pos, dur time.Duration)) {
	e.ctrl.OnProgress(fn)
}

// OnPlaybackEnded registers fn, called once when a mix plays to its end.
func (e *Engine) OnPlaybackEnded(fn func()) {
	e.ctrl.OnEnded(fn)
}

func (e *Engine) Status() playback.Status { return e.ctrl.Status() }

// Position is the play position, 0 unless playing.
func (e *Engine) Position() time.Duration { return e.ctrl.Position() }

// Duration of the mix being played, 0 unless playing.
func (e *Engine) Duration() time.Duration { return e.ctrl.Duration() }

// Close stops playback, removes temporary files and, with CleanupStems,
// the current stem directory. The device is closed too.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	err := e.ctrl.Close()
	if e.cfg.CleanupStems && e.set != nil {
		e.removeSet()
	}
	if devErr := e.cfg.Device.Close(); devErr != nil {
		err = errors.Join(err, fmt.Errorf("close device: %w", devErr))
	}
	return err
}

func (e *Engine) removeSet() {
	if err := e.set.Remove(); err != nil {
		e.logger.Warn("removing stems", zap.String("dir", e.set.Dir), zap.Error(err))
	} else {
		e.logger.Info("stems removed", zap.String("dir", e.set.Dir))
	}
	e.set = nil
	e.selection = mixer.GainSelection{}
}
