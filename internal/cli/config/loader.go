package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/envset/internal/cli/output"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// configKey is used to store config in context.
type configKey struct{}

// Load loads configuration from defaults, the settings file, environment
// variables and flags. Precedence (highest to lowest): flags > env vars >
// settings file > defaults.
func Load(flags *pflag.FlagSet) (*Config, string, error) {
	k := koanf.New(".")

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]any{
		"local_file":     DefaultLocalFile,
		"global_dir":     DefaultGlobalDir,
		"output":         DefaultOutput,
		"verbose":        false,
		"no_color":       false,
		"history":        true,
		"watch_debounce": DefaultDebounce.String(),
	}, "."), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Load the settings file from the global directory, which may itself
	// be overridden by env or flag.
	globalDir, err := expandHome(globalDirOverride(flags, k.String("global_dir")))
	if err != nil {
		return nil, "", err
	}
	settingsFile := filepath.Join(globalDir, SettingsFileName)
	if _, err := os.Stat(settingsFile); err == nil {
		if err := k.Load(file.Provider(settingsFile), yaml.Parser()); err != nil {
			return nil, "", fmt.Errorf("error reading settings file %s: %w", settingsFile, err)
		}
	} else {
		settingsFile = ""
	}

	// 3. Load environment variables (ENVSET_ prefix)
	// Transform: ENVSET_GLOBAL_DIR -> global_dir. Empty values are ignored.
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, any) {
		if value == "" {
			return "", nil
		}
		return envKey(key), value
	}), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			return flagKey(f.Name), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, "", fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
			TagName:          "koanf",
		},
	}); err != nil {
		return nil, "", fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.GlobalDir, err = expandHome(cfg.GlobalDir)
	if err != nil {
		return nil, "", err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, settingsFile, nil
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if _, err := output.ParseMode(c.OutputFormat); err != nil {
		return err
	}
	if c.LocalFile == "" || filepath.Base(c.LocalFile) != c.LocalFile {
		return fmt.Errorf("local_file must be a plain file name, got %q", c.LocalFile)
	}
	if c.GlobalDir == "" {
		return fmt.Errorf("global_dir is required")
	}
	if c.Debounce < 0 {
		return fmt.Errorf("watch_debounce must not be negative")
	}
	return nil
}

func envKey(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}

// flagKey maps kebab-case flag names to snake_case config keys.
func flagKey(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

func globalDirOverride(flags *pflag.FlagSet, fallback string) string {
	if flags != nil && flags.Changed("global-dir") {
		if v, _ := flags.GetString("global-dir"); v != "" {
			return v
		}
	}
	if v := os.Getenv(EnvPrefix + "GLOBAL_DIR"); v != "" {
		return v
	}
	return fallback
}

// expandHome resolves a leading "~" and makes the path absolute.
func expandHome(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return abs, nil
}

// WithLogger returns a context carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

// WithConfig returns a context carrying cfg.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// GetConfig retrieves the config from the command context, or defaults
// when none was loaded.
func GetConfig(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	globalDir, err := expandHome(DefaultGlobalDir)
	if err != nil {
		globalDir = DefaultGlobalDir
	}
	return &Config{
		LocalFile:    DefaultLocalFile,
		GlobalDir:    globalDir,
		OutputFormat: DefaultOutput,
		History:      true,
		Debounce:     DefaultDebounce,
	}
}
