// ABOUTME: Centralized configuration for the seatbot store and CLI
// ABOUTME: Loads defaults, an optional YAML file, then environment overrides
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harper/seatbot/internal/storage/sqlite"
)

// Config holds all configuration for the bot's storage
type Config struct {
	// Storage settings
	DataDir     string        `yaml:"data_dir"`
	DBFile      string        `yaml:"db_file"`
	Driver      string        `yaml:"driver"`
	BusyTimeout time.Duration `yaml:"busy_timeout"`
	QueryCache  bool          `yaml:"query_cache"`

	// Logging
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		DataDir:     sqlite.DefaultDataDir(),
		DBFile:      "seatbot.db",
		Driver:      sqlite.DriverPureGo,
		BusyTimeout: 5 * time.Second,
		QueryCache:  true,
		LogLevel:    "info",
	}
}

// Load reads SEATBOT_CONFIG (if set) and then environment variables
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("SEATBOT_CONFIG"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.DataDir = getEnv("SEATBOT_DATA_DIR", cfg.DataDir)
	cfg.DBFile = getEnv("SEATBOT_DB_FILE", cfg.DBFile)
	cfg.Driver = getEnv("SEATBOT_DB_DRIVER", cfg.Driver)
	cfg.LogLevel = getEnv("SEATBOT_LOG_LEVEL", cfg.LogLevel)

	var err error
	if cfg.BusyTimeout, err = getEnvDuration("SEATBOT_BUSY_TIMEOUT", cfg.BusyTimeout); err != nil {
		return nil, err
	}
	if cfg.QueryCache, err = getEnvBool("SEATBOT_QUERY_CACHE", cfg.QueryCache); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

// LoadFile overlays settings from a YAML file onto c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Driver != sqlite.DriverPureGo && c.Driver != sqlite.DriverCGO {
		return fmt.Errorf("SEATBOT_DB_DRIVER must be %q or %q, got %q", sqlite.DriverPureGo, sqlite.DriverCGO, c.Driver)
	}
	if c.BusyTimeout < 0 {
		return fmt.Errorf("SEATBOT_BUSY_TIMEOUT cannot be negative, got %s", c.BusyTimeout)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("SEATBOT_LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel)
	}
	if c.DBFile == "" {
		return fmt.Errorf("SEATBOT_DB_FILE cannot be empty")
	}
	return nil
}

// DBPath returns the database location. In-memory and absolute DBFile values
// are used as-is; anything else is relative to DataDir.
func (c *Config) DBPath() string {
	if sqlite.IsMemory(c.DBFile) || filepath.IsAbs(c.DBFile) {
		return c.DBFile
	}
	return filepath.Join(c.DataDir, c.DBFile)
}

// StorageOptions returns the driver options for opening DBPath.
func (c *Config) StorageOptions() sqlite.Options {
	return sqlite.Options{Driver: c.Driver, BusyTimeout: c.BusyTimeout}
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal, fmt.Errorf("%s must be true or false, got %q", key, v)
	}
	return b, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal, fmt.Errorf("%s must be a duration such as 5s, got %q: %w", key, v, err)
	}
	return d, nil
}
