// SPDX-License-Identifier: EPL-2.0

package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ik5/stemdeck/separator"
	"github.com/ik5/stemdeck/stems"
)

// KnownDevices are the playback device names the CLI can create.
var KnownDevices = []string{"file", "miniaudio", "null", "pulse", "speaker"}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStems(); err != nil {
		return err
	}
	if err := c.validateSeparator(); err != nil {
		return err
	}
	if err := c.validatePlayback(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStems() error {
	if c.Stems.OutputDir == "" {
		return errors.New("stems.output_dir must be set")
	}
	if _, err := stems.ParseNames(c.Stems.Names); err != nil {
		return fmt.Errorf("stems.names: %w", err)
	}
	return nil
}

func (c *Config) validateSeparator() error {
	if !slices.Contains(separator.Backends(), c.Separator.Backend) {
		return fmt.Errorf("separator.backend must be one of %v, got %q", separator.Backends(), c.Separator.Backend)
	}
	return nil
}

func (c *Config) validatePlayback() error {
	if !slices.Contains(KnownDevices, c.Playback.Device) {
		return fmt.Errorf("playback.device must be one of %v, got %q", KnownDevices, c.Playback.Device)
	}
	if c.Playback.PollIntervalMS < 0 {
		return errors.New("playback.poll_interval_ms must be positive")
	}
	if c.Playback.LatencyMS < 0 {
		return errors.New("playback.latency_ms must be positive")
	}
	if c.Playback.SampleRate < 0 {
		return errors.New("playback.sample_rate must be zero (device default) or positive")
	}
	if c.Playback.Channels < 0 || c.Playback.Channels > 8 {
		return errors.New("playback.channels must be between 0 (device default) and 8")
	}
	if c.Playback.Device == "file" && c.Playback.OutputPath == "" {
		return errors.New("playback.output_path is required for the file device")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}
