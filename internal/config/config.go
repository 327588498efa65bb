// Package config handles configuration loading for garagepm.
// It supports XDG config paths and environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// EnvPrefix prefixes environment overrides, e.g. GARAGEPM_TRACKER_TICK_INTERVAL.
const EnvPrefix = "GARAGEPM"

// Config holds all configuration for garagepm.
type Config struct {
	Tasks   TasksConfig   `mapstructure:"tasks"`
	Tracker TrackerConfig `mapstructure:"tracker"`
	Debug   DebugConfig   `mapstructure:"debug"`
}

// TasksConfig holds task naming defaults.
type TasksConfig struct {
	// RootName is the name given to the root task of a new context.
	RootName string `mapstructure:"root_name"`
	// DefaultName is used by AppendNewTask when no name is given.
	DefaultName string `mapstructure:"default_name"`
}

// TrackerConfig holds time tracker settings.
type TrackerConfig struct {
	TickInterval time.Duration `mapstructure:"tick_interval"`
}

// DebugConfig holds debug logging settings.
type DebugConfig struct {
	// LogPath is the debug log file. Empty disables logging.
	LogPath string `mapstructure:"log_path"`
}

// Load loads configuration from the XDG path and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (GARAGEPM_*)
// 2. User config (~/.config/garagepm/config.yaml)
// 3. Built-in defaults
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigFile(GetUserConfigPath())
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	return decode(v)
}

// LoadFromPath loads configuration from a specific path.
// Environment variables still take precedence over the file.
func LoadFromPath(path string) (*Config, error) {
	v := newViper()

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	return decode(v)
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Tasks: TasksConfig{
			RootName:    "Root task",
			DefaultName: "Task",
		},
		Tracker: TrackerConfig{
			TickInterval: time.Minute,
		},
	}
}

// Validate checks values that would break the domain at runtime.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Tasks.RootName) == "" {
		errs = append(errs, fmt.Errorf("%w: tasks.root_name must not be empty", ErrInvalidConfig))
	}
	if strings.TrimSpace(c.Tasks.DefaultName) == "" {
		errs = append(errs, fmt.Errorf("%w: tasks.default_name must not be empty", ErrInvalidConfig))
	}
	if c.Tracker.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("%w: tracker.tick_interval must be positive, got %s", ErrInvalidConfig, c.Tracker.TickInterval))
	}
	return errors.Join(errs...)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Debug.LogPath = os.ExpandEnv(cfg.Debug.LogPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("tasks.root_name", d.Tasks.RootName)
	v.SetDefault("tasks.default_name", d.Tasks.DefaultName)

	v.SetDefault("tracker.tick_interval", d.Tracker.TickInterval.String())

	v.SetDefault("debug.log_path", d.Debug.LogPath)
}

// getUserConfigDir returns the XDG config directory for garagepm.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "garagepm")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "garagepm")
	}
	return filepath.Join(home, ".config", "garagepm")
}
