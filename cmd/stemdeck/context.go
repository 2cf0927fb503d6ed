// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ik5/stemdeck/config"
	"github.com/ik5/stemdeck/device"
	"github.com/ik5/stemdeck/engine"
	"github.com/ik5/stemdeck/internal/logging"
	"github.com/ik5/stemdeck/mixer"
	"github.com/ik5/stemdeck/separator"
	"github.com/ik5/stemdeck/stems"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *zap.Logger
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
			if err := cfg.Validate(); err != nil {
				c.configErr = err
				return
			}
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// log returns the configured logger, or a no-op one when it cannot be
// built.
func (c *commandContext) log() *zap.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err == nil {
			c.logger, err = logging.NewFromConfig(cfg)
		}
		if err != nil || c.logger == nil {
			c.logger = zap.NewNop()
		}
	})
	return c.logger
}

func (c *commandContext) syncLogger() {
	if c.logger != nil {
		_ = c.logger.Sync()
	}
}

func (c *commandContext) stemOptions(cfg *config.Config) ([]stems.Option, error) {
	names, err := stems.ParseNames(cfg.Stems.Names)
	if err != nil {
		return nil, fmt.Errorf("stems.names: %w", err)
	}
	return []stems.Option{
		stems.WithNames(names...),
		stems.WithExtension(cfg.Stems.Extension),
	}, nil
}

func (c *commandContext) registerStems(base string) (*stems.Set, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	opts, err := c.stemOptions(cfg)
	if err != nil {
		return nil, err
	}
	set, err := stems.Register(base, cfg.Stems.OutputDir, opts...)
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", base, err)
	}
	return set, nil
}

func (c *commandContext) newSeparator(cfg *config.Config) (separator.Separator, error) {
	return separator.New(separator.Config{
		Backend: cfg.Separator.Backend,
		Binary:  cfg.Separator.Binary,
		Model:   cfg.Separator.Model,
		Device:  cfg.Separator.Device,
		Logger:  c.log().Named("separator"),
	})
}

func (c *commandContext) newDevice(cfg *config.Config, name string) (device.Device, error) {
	if name == "" {
		name = cfg.Playback.Device
	}
	return device.Create(device.Settings{
		Name:       name,
		SampleRate: cfg.Playback.SampleRate,
		Channels:   cfg.Playback.Channels,
		Filepath:   cfg.Playback.OutputPath,
		Latency:    cfg.Latency(),
		Logger:     c.log().Named("device"),
	})
}

// newEngine builds an engine around the configured separator and the named
// device, or the configured one when deviceName is empty.
func (c *commandContext) newEngine(deviceName string) (*engine.Engine, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	opts, err := c.stemOptions(cfg)
	if err != nil {
		return nil, err
	}
	sep, err := c.newSeparator(cfg)
	if err != nil {
		return nil, err
	}
	dev, err := c.newDevice(cfg, deviceName)
	if err != nil {
		return nil, fmt.Errorf("open device: %w", err)
	}

	logger := c.log()
	eng, err := engine.New(engine.Config{
		OutputDir:    cfg.Stems.OutputDir,
		Separator:    sep,
		Device:       dev,
		StemOptions:  opts,
		Mixer:        mixer.New(mixer.WithLogger(logger.Named("mixer"))),
		PollInterval: cfg.PollInterval(),
		TempDir:      cfg.Playback.TempDir,
		CleanupStems: cfg.Stems.CleanupOnExit,
		Logger:       logger.Named("engine"),
	})
	if err != nil {
		_ = dev.Close()
		return nil, err
	}
	return eng, nil
}

// parseSelection reads a --select value. Empty selects every stem of set at
// 0 dB.
func parseSelection(value string, set *stems.Set) (mixer.GainSelection, error) {
	if strings.TrimSpace(value) == "" {
		return mixer.All(set.Names()), nil
	}
	sel, err := mixer.ParseSelection(value)
	if err != nil {
		return nil, err
	}
	return sel, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
