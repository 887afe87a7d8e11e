package config

import (
	"fmt"
	"time"

	"taskq/internal/scheduler"
	"taskq/internal/storage"
	logx "taskq/pkg/logx"
)

type Config struct {
	Storage StorageConfig `json:"storage"`
	Logging LoggingConfig `json:"logging"`
	Runner  RunnerConfig  `json:"runner"`
}

// StorageConfig controls the persistence layer.
//
// Example:
//
//	"storage": { "driver": "file", "path": "./tasks.json" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// RunnerConfig controls the simulated execution action.
//
// SimulateWork is a pointer so we can distinguish "omitted" (default true)
// from an explicit false.
type RunnerConfig struct {
	SimulateWork *bool `json:"simulate_work,omitempty"`
	RatePerSec   int   `json:"rate_per_sec,omitempty"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{Driver: "file", Path: "./tasks.json"},
		Logging: LoggingConfig{Level: "info", Console: true},
	}
}

// StorageSettings resolves the storage section into the storage package's
// config, parsing the busy timeout duration string.
func (c *Config) StorageSettings() (storage.Config, error) {
	out := storage.Config{Driver: c.Storage.Driver, Path: c.Storage.Path}
	if s := c.Storage.BusyTimeout; s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return storage.Config{}, fmt.Errorf("storage.busy_timeout: %w", err)
		}
		out.BusyTimeout = d
	}
	return out, nil
}

func (c *Config) LoggingSettings() logx.Config {
	return logx.Config{
		Level:   c.Logging.Level,
		Console: c.Logging.Console,
		File: logx.FileConfig{
			Enabled: c.Logging.File.Enabled,
			Path:    c.Logging.File.Path,
		},
	}
}

func (c *Config) RunnerSettings() scheduler.RunnerConfig {
	simulate := true
	if c.Runner.SimulateWork != nil {
		simulate = *c.Runner.SimulateWork
	}
	return scheduler.RunnerConfig{
		SimulateWork: simulate,
		RatePerSec:   c.Runner.RatePerSec,
	}
}
