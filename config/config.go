// Package config holds the run configuration, loadable from a YAML file
// and overridable from the command line.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all settings for a conversion run.
type Config struct {
	// InputPath is an image file or a directory of images (no recursion).
	InputPath string `yaml:"input_path"`

	// OutputFile is the CSV the run writes, and merges with when it
	// already exists.
	OutputFile string `yaml:"output_file"`

	// Timezone is the IANA name of the zone the screenshots were taken
	// in; transaction times are converted from it to UTC.
	Timezone string `yaml:"timezone"`

	// Year is applied to parsed dates, since the app never displays one.
	Year int `yaml:"year"`

	// LogFile receives the structured log. Empty disables file logging.
	LogFile string `yaml:"log_file"`

	// Verbose enables debug-level logging, including per-detection dumps.
	Verbose bool `yaml:"verbose"`

	// PrintLogs mirrors log output to the console.
	PrintLogs bool `yaml:"print_logs"`
}

// Default returns the configuration used when no file or flags override it.
func Default() Config {
	return Config{
		InputPath:  "data",
		OutputFile: "redotpay.csv",
		Timezone:   "Asia/Jerusalem",
		Year:       2025,
		LogFile:    "koinshot.log",
	}
}

// Load reads a YAML config file over the defaults. An empty path returns
// the defaults; a named file that cannot be read or parsed is a user
// error, not something to silently ignore.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: cannot read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: cannot parse %q: %w", path, err)
	}
	return cfg, nil
}
