// Package config loads and saves the paysplit TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all paysplit configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Appearance AppearanceConfig `toml:"appearance"`
	Serve      ServeConfig      `toml:"serve"`
	Log        LogConfig        `toml:"log"`
}

// GeneralConfig holds storage and formatting preferences.
type GeneralConfig struct {
	DBPath string `toml:"db_path,omitempty"`
	Locale string `toml:"locale"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// ServeConfig holds HTTP daemon settings.
type ServeConfig struct {
	Addr        string `toml:"addr"`
	EventBuffer int    `toml:"event_buffer"`
	// RefreshSeconds is how often the server checks the database for
	// changes saved by other paysplit processes.
	RefreshSeconds int `toml:"refresh_seconds"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Locale: "en-US",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Serve: ServeConfig{
			Addr:           "127.0.0.1:8787",
			EventBuffer:    200,
			RefreshSeconds: 2,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "paysplit")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "paysplit")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "paysplit")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "paysplit")
}

// DBPath returns the state database path from env var, config, or the
// default data dir, in that order.
func DBPath(cfg Config) string {
	if p := os.Getenv("PAYSPLIT_DB"); p != "" {
		return p
	}
	if cfg.General.DBPath != "" {
		return cfg.General.DBPath
	}
	return filepath.Join(DataDir(), "paysplit.db")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config at path, returning defaults if it doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is the user's own config file
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
