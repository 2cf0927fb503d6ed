// SPDX-License-Identifier: EPL-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultExtension      = "wav"
	defaultBackend        = "spleeter"
	defaultDevice         = "speaker"
	defaultPollIntervalMS = 50
	defaultLatencyMS      = 100
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

var defaultStemNames = []string{"vocals", "drums", "bass", "other"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Stems: Stems{
			OutputDir: defaultOutputDir(),
			Extension: defaultExtension,
			Names:     append([]string(nil), defaultStemNames...),
		},
		Separator: Separator{
			Backend: defaultBackend,
		},
		Playback: Playback{
			Device:         defaultDevice,
			PollIntervalMS: defaultPollIntervalMS,
			LatencyMS:      defaultLatencyMS,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultOutputDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "stemdeck", "stems")
	}
	return "~/.cache/stemdeck/stems"
}
