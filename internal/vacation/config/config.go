// Package config loads the yaml configuration of the vacation ledger.
package config

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDatabasePath = "employees.db"
	defaultOpenRetries  = 3
	defaultBusyTimeout  = 5 * time.Second
)

// Config is the whole application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
}

// DatabaseConfig describes the local sqlite file.
type DatabaseConfig struct {
	Path           string        `yaml:"path"`
	OpenRetries    uint64        `yaml:"open_retries"`
	BusyTimeout    time.Duration `yaml:"-"`
	BusyTimeoutRaw string        `yaml:"busy_timeout"`
}

// LogConfig selects the zap logger flavour and level.
type LogConfig struct {
	Development bool   `yaml:"development"`
	Level       string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:        DefaultDatabasePath,
			OpenRetries: defaultOpenRetries,
			BusyTimeout: defaultBusyTimeout,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads the file at path on top of the defaults. An empty path yields
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validateAndNormalize() error {
	if c.Database.Path == "" {
		return fmt.Errorf("config: database.path must be set")
	}
	if c.Database.BusyTimeoutRaw != "" {
		d, err := time.ParseDuration(c.Database.BusyTimeoutRaw)
		if err != nil {
			return fmt.Errorf("config: database.busy_timeout: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("config: database.busy_timeout must not be negative")
		}
		c.Database.BusyTimeout = d
	}
	if _, err := c.Log.ZapLevel(); err != nil {
		return err
	}
	return nil
}

// ZapLevel parses the configured level; empty means info.
func (l LogConfig) ZapLevel() (zapcore.Level, error) {
	if l.Level == "" {
		return zapcore.InfoLevel, nil
	}
	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return level, fmt.Errorf("config: log.level: %w", err)
	}
	return level, nil
}

// NewLogger builds the zap logger described by the configuration.
func (l LogConfig) NewLogger() (*zap.Logger, error) {
	level, err := l.ZapLevel()
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if l.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
