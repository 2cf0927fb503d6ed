// SPDX-License-Identifier: EPL-2.0

package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeStems(); err != nil {
		return err
	}
	c.normalizeSeparator()
	if err := c.normalizePlayback(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeStems() error {
	var err error
	if strings.TrimSpace(c.Stems.OutputDir) == "" {
		c.Stems.OutputDir = defaultOutputDir()
	}
	if c.Stems.OutputDir, err = expandPath(c.Stems.OutputDir); err != nil {
		return fmt.Errorf("stems.output_dir: %w", err)
	}
	c.Stems.Extension = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c.Stems.Extension), "."))
	if c.Stems.Extension == "" {
		c.Stems.Extension = defaultExtension
	}
	if len(c.Stems.Names) == 0 {
		c.Stems.Names = append([]string(nil), defaultStemNames...)
	}
	for i, name := range c.Stems.Names {
		c.Stems.Names[i] = strings.ToLower(strings.TrimSpace(name))
	}
	return nil
}

func (c *Config) normalizeSeparator() {
	c.Separator.Backend = strings.ToLower(strings.TrimSpace(c.Separator.Backend))
	if c.Separator.Backend == "" {
		c.Separator.Backend = defaultBackend
	}
	c.Separator.Binary = strings.TrimSpace(c.Separator.Binary)
	c.Separator.Model = strings.TrimSpace(c.Separator.Model)
	c.Separator.Device = strings.TrimSpace(c.Separator.Device)
}

func (c *Config) normalizePlayback() error {
	var err error
	c.Playback.Device = strings.ToLower(strings.TrimSpace(c.Playback.Device))
	if c.Playback.Device == "" {
		c.Playback.Device = defaultDevice
	}
	if c.Playback.PollIntervalMS == 0 {
		c.Playback.PollIntervalMS = defaultPollIntervalMS
	}
	if c.Playback.LatencyMS == 0 {
		c.Playback.LatencyMS = defaultLatencyMS
	}
	if c.Playback.TempDir, err = expandPath(strings.TrimSpace(c.Playback.TempDir)); err != nil {
		return fmt.Errorf("playback.temp_dir: %w", err)
	}
	if c.Playback.OutputPath, err = expandPath(strings.TrimSpace(c.Playback.OutputPath)); err != nil {
		return fmt.Errorf("playback.output_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
