package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	forecaster "github.com/gamyers/solar-697"
	"github.com/gamyers/solar-697/store"
	"gopkg.in/yaml.v3"
)

// Config is the YAML configuration of the cli
type Config struct {
	Database string              `yaml:"database"`
	Store    *store.Options      `yaml:"store"`
	Forecast *forecaster.Options `yaml:"forecast"`

	// DropColumns replaces the forecaster drop columns when set
	DropColumns []string `yaml:"drop_columns"`

	// CacheSize is the number of train/test splits memoized per process. Zero disables the cache.
	CacheSize int `yaml:"cache_size"`

	LogLevel string `yaml:"log_level"`
}

func newDefaultConfig() *Config {
	return &Config{
		Database:  "solar.db",
		Store:     store.NewDefaultOptions(),
		Forecast:  forecaster.NewDefaultOptions(),
		CacheSize: 32,
		LogLevel:  "info",
	}
}

// loadConfig reads the YAML file at path over the defaults. An empty path returns the defaults.
func loadConfig(path string) (*Config, error) {
	cfg := newDefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("unable to read config, %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("unable to parse config %s, %w", path, err)
		}
	}
	if len(cfg.DropColumns) > 0 {
		cfg.Forecast.DropColumns = cfg.DropColumns
	}

	var err error
	if cfg.Forecast, err = cfg.Forecast.Validate(); err != nil {
		return nil, err
	}
	if cfg.Store, err = cfg.Store.Validate(); err != nil {
		return nil, err
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return l, fmt.Errorf("invalid log level %q, %w", level, err)
	}
	return l, nil
}
