// Package config handles global bibdup configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents configuration stored in ~/.config/bibdup/config.yml.
type Config struct {
	DBPath           string `yaml:"db_path,omitempty"`            // SQLite record index location
	Human            bool   `yaml:"human,omitempty"`              // Default to human-readable output
	FailOnDuplicates bool   `yaml:"fail_on_duplicates,omitempty"` // Non-zero exit when duplicates are found
}

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME and XDG_CACHE_HOME.
	ConfigDir = "bibdup"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"
	// DBFile is the default record index file name.
	DBFile = "records.db"

	// EnvDBPath overrides db_path.
	EnvDBPath = "BIBDUP_DB"
)

// configCache caches the loaded config.
var configCache *Config

// ConfigPath returns the path to the config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/bibdup/config.yml.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// DefaultDBPath returns the default index location.
// Respects XDG_CACHE_HOME, defaults to ~/.cache/bibdup/records.db.
func DefaultDBPath() string {
	cacheHome := os.Getenv("XDG_CACHE_HOME")
	if cacheHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), ConfigDir, DBFile)
		}
		cacheHome = filepath.Join(home, ".cache")
	}
	return filepath.Join(cacheHome, ConfigDir, DBFile)
}

// Load reads the config file.
// Returns an empty config (not an error) if the file doesn't exist.
func Load() (*Config, error) {
	if configCache != nil {
		return configCache, nil
	}

	path := ConfigPath()
	if path == "" {
		return &Config{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.DBPath != "" {
		cfg.DBPath = ExpandPath(cfg.DBPath)
	}

	configCache = &cfg
	return &cfg, nil
}

// ResetCache clears the cached config.
// Useful for testing.
func ResetCache() {
	configCache = nil
}

// ResolveDBPath returns the index path: BIBDUP_DB, then db_path, then the default.
func (c *Config) ResolveDBPath() string {
	return ExpandPath(GetConfigValue(EnvDBPath, c.DBPath, DefaultDBPath()))
}

// GetConfigValue returns the environment variable if set, otherwise the
// config value, otherwise the fallback.
func GetConfigValue(envKey, configValue, fallback string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	if configValue != "" {
		return configValue
	}
	return fallback
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
