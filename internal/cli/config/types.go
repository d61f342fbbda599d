// Package config loads CLI settings from defaults, the global settings file,
// ENVSET_ environment variables and command-line flags.
package config

import (
	"path/filepath"
	"time"

	intconfig "github.com/leapstack-labs/envset/internal/config"
	"github.com/leapstack-labs/envset/internal/state"
)

// Config holds all CLI configuration options.
type Config struct {
	// LocalFile is the project file name searched for upward from the working directory.
	LocalFile string `koanf:"local_file"`
	// GlobalDir holds the global store, settings and run history.
	GlobalDir    string        `koanf:"global_dir"`
	OutputFormat string        `koanf:"output"`
	Verbose      bool          `koanf:"verbose"`
	NoColor      bool          `koanf:"no_color"`
	History      bool          `koanf:"history"`
	Debounce     time.Duration `koanf:"watch_debounce"`

	// Setup and Env override the current selection for one command.
	Setup string `koanf:"setup"`
	Env   string `koanf:"env"`
}

// Default configuration values.
const (
	DefaultLocalFile = intconfig.LocalFileName
	DefaultGlobalDir = "~/.envset"
	DefaultOutput    = "auto"
	DefaultDebounce  = 150 * time.Millisecond

	// SettingsFileName is the optional settings file inside the global directory.
	SettingsFileName = "settings.yaml"
	// EnvPrefix prefixes environment variables that override settings.
	EnvPrefix = "ENVSET_"
)

// GlobalFile returns the path of the global store.
func (c *Config) GlobalFile() string {
	return filepath.Join(c.GlobalDir, intconfig.GlobalFileName)
}

// HistoryFile returns the path of the run history database.
func (c *Config) HistoryFile() string {
	return filepath.Join(c.GlobalDir, state.DefaultFileName)
}

// SettingsFile returns the path of the settings file.
func (c *Config) SettingsFile() string {
	return filepath.Join(c.GlobalDir, SettingsFileName)
}
