// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ik5/stemdeck/audio"
	"github.com/ik5/stemdeck/device"
	"github.com/ik5/stemdeck/formats/wav"
)

// DefaultPollInterval is how often progress is sampled while playing.
const DefaultPollInterval = 50 * time.Millisecond

// ProgressFunc receives the play position and the total duration.
type ProgressFunc func(position, duration time.Duration)

// EndedFunc is called once when playback runs to the end.
type EndedFunc func()

type session struct {
	id       uuid.UUID
	handle   device.Handle
	tracker  Tracker
	tempPath string
	cancel   context.CancelFunc
	done     chan struct{}

	// guarded by Controller.mu
	dispatching bool
}

// Controller owns the single playback session.
type Controller struct {
	dev      device.Device
	decoders *audio.Registry
	logger   *zap.Logger
	clock    Clock
	interval time.Duration

	// startMu serializes Start, Restart and Close.
	startMu sync.Mutex
	tempDir string
	ownTemp bool
	closed  bool

	mu         sync.Mutex
	status     Status
	session    *session
	onProgress ProgressFunc
	onEnded    EndedFunc
}

type Option func(*Controller)

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithTempDir sets where mixes are rendered before playback. The directory
// must exist. Without it the controller creates, and on Close removes, its
// own directory.
func WithTempDir(dir string) Option {
	return func(c *Controller) {
		c.tempDir = dir
	}
}

func WithDecoders(r *audio.Registry) Option {
	return func(c *Controller) {
		if r != nil {
			c.decoders = r
		}
	}
}

func WithClock(clock Clock) Option {
	return func(c *Controller) {
		if clock != nil {
			c.clock = clock
		}
	}
}

func NewController(dev device.Device, opts ...Option) *Controller {
	decoders := audio.NewRegistry()
	decoders.Register("wav", wav.Decoder{})

	c := &Controller{
		dev:      dev,
		decoders: decoders,
		logger:   zap.NewNop(),
		clock:    SystemClock,
		interval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnProgress sets the progress callback. It runs on the poll goroutine.
// A call already being delivered when Stop is called may still be running
// after Stop returns; no call starts afterwards.
func (c *Controller) OnProgress(fn ProgressFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.onProgress = fn
}

// OnEnded sets the end-of-playback callback. It runs on the poll goroutine.
func (c *Controller) OnEnded(fn EndedFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.onEnded = fn
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.status
}

// Position is the current play position, 0 unless playing.
func (c *Controller) Position() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return 0
	}
	return c.session.tracker.Elapsed(c.clock.Now())
}

// Duration of the buffer being played, 0 unless playing.
func (c *Controller) Duration() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return 0
	}
	return c.session.tracker.Total()
}

// Start plays buf from the beginning. A session that is still playing is
// stopped first. If the device refuses, ErrPlaybackDevice is returned and
// nothing is left behind.
func (c *Controller) Start(ctx context.Context, buf *audio.Buffer) error {
	c.startMu.Lock()
	defer c.startMu.Unlock()

	if c.closed {
		return fmt.Errorf("%w: controller closed", ErrInvalidTransition)
	}
	if buf == nil || buf.Frames() == 0 {
		return ErrEmptyBuffer
	}

	if err := c.Stop(); err != nil {
		c.logger.Warn("stopping previous session", zap.Error(err))
	}

	dir, err := c.ensureTempDir()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPlaybackDevice, err)
	}

	id := uuid.New()
	path, err := renderTemp(dir, id, buf)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPlaybackDevice, err)
	}

	src, err := openForDevice(c.decoders, path, c.dev.Format())
	if err != nil {
		_ = removeTemp(path)
		return fmt.Errorf("%w: %w", ErrPlaybackDevice, err)
	}

	handle, err := c.dev.Play(ctx, src)
	if err != nil {
		_ = removeTemp(path)
		c.logger.Warn("device refused playback",
			zap.String("device", c.dev.Name()),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %w", ErrPlaybackDevice, err)
	}

	pollCtx, cancel := context.WithCancel(context.Background())
	sess := &session{
		id:       id,
		handle:   handle,
		tracker:  NewTracker(c.clock.Now(), buf.Duration()),
		tempPath: path,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	c.mu.Lock()
	c.session = sess
	c.status = Playing
	c.mu.Unlock()

	go c.poll(pollCtx, sess)

	c.logger.Info("playback started",
		zap.Stringer("session", id),
		zap.String("device", c.dev.Name()),
		zap.Duration("duration", buf.Duration()),
	)
	return nil
}

// Restart stops the current session and plays buf from position 0. The
// device cannot seek, so this is also how a seek is served.
func (c *Controller) Restart(ctx context.Context, buf *audio.Buffer) error {
	return c.Start(ctx, buf)
}

// Stop halts playback and releases the session. It is a no-op when nothing
// is playing. On return the poll loop has exited, except when Stop runs
// inside a callback, or races one already being delivered; no later
// callback fires in either case.
func (c *Controller) Stop() error {
	c.mu.Lock()
	sess := c.session
	if sess == nil {
		c.mu.Unlock()
		return nil
	}
	c.session = nil
	c.status = Stopped
	wait := !sess.dispatching
	c.mu.Unlock()

	sess.cancel()
	if wait {
		<-sess.done
	}

	err := c.release(sess)
	c.logger.Info("playback stopped", zap.Stringer("session", sess.id))
	return err
}

// Close stops playback and removes the temporary directory the controller
// created. The controller cannot be started again.
func (c *Controller) Close() error {
	c.startMu.Lock()
	defer c.startMu.Unlock()

	err := c.Stop()
	c.closed = true

	if c.ownTemp && c.tempDir != "" {
		if rmErr := os.RemoveAll(c.tempDir); rmErr != nil && err == nil {
			err = fmt.Errorf("%w", rmErr)
		}
		c.tempDir = ""
		c.ownTemp = false
	}
	return err
}

func (c *Controller) ensureTempDir() (string, error) {
	if c.tempDir != "" {
		return c.tempDir, nil
	}
	dir, err := os.MkdirTemp("", "stemdeck-")
	if err != nil {
		return "", fmt.Errorf("%w", err)
	}
	c.tempDir, c.ownTemp = dir, true
	return dir, nil
}

// release stops the device and deletes the rendered file.
func (c *Controller) release(sess *session) error {
	sess.cancel()

	stopErr := sess.handle.Stop()
	rmErr := removeTemp(sess.tempPath)
	if stopErr != nil {
		c.logger.Warn("device stop failed", zap.Stringer("session", sess.id), zap.Error(stopErr))
	}
	if rmErr != nil {
		c.logger.Warn("temp file not removed", zap.String("path", sess.tempPath), zap.Error(rmErr))
	}
	return errors.Join(stopErr, rmErr)
}

func (c *Controller) poll(ctx context.Context, sess *session) {
	defer close(sess.done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !c.tick(sess) {
				return
			}
		}
	}
}

// tick samples the device once. It reports whether polling continues.
func (c *Controller) tick(sess *session) bool {
	playing := sess.handle.IsPlaying()
	now := c.clock.Now()

	c.mu.Lock()
	if c.session != sess {
		c.mu.Unlock()
		return false
	}
	onProgress, onEnded := c.onProgress, c.onEnded
	sess.dispatching = true

	if playing {
		c.mu.Unlock()

		if onProgress != nil {
			onProgress(sess.tracker.Elapsed(now), sess.tracker.Total())
		}

		c.mu.Lock()
		sess.dispatching = false
		c.mu.Unlock()
		return true
	}

	c.session = nil
	c.status = Stopped
	c.mu.Unlock()

	_ = c.release(sess)
	c.logger.Info("playback finished",
		zap.Stringer("session", sess.id),
		zap.Duration("duration", sess.tracker.Total()),
	)

	total := sess.tracker.Total()
	if onProgress != nil {
		onProgress(total, total)
	}
	if onEnded != nil {
		onEnded()
	}
	return false
}
