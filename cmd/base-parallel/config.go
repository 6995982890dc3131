package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	parallel "github.com/pbatard/base-parallel"
)

// fileConfig maps config.toml keys to run settings. Every key is optional;
// zero values fall back to the library defaults.
type fileConfig struct {
	SpareThreads    int    `toml:"spare_threads"`
	WaitTimeoutMs   int    `toml:"wait_timeout_ms"`
	MaxRounds       uint32 `toml:"max_rounds"`
	ShutdownGraceMs int    `toml:"shutdown_grace_ms"`
	LogLevel        string `toml:"log_level"`
}

// loadConfig reads the TOML file at path. An empty path yields the zero
// config, meaning all defaults.
func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return fileConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.SpareThreads < 0 {
		return fileConfig{}, fmt.Errorf("%s: spare_threads must not be negative", path)
	}
	return cfg, nil
}

// options translates the file settings into dispatcher options. Unset keys
// produce no option, leaving the library default in place.
func (c fileConfig) options(log *slog.Logger) []parallel.Option {
	opts := []parallel.Option{parallel.WithLogger(log)}
	if c.SpareThreads > 0 {
		opts = append(opts, parallel.WithSpareThreads(c.SpareThreads))
	}
	if c.WaitTimeoutMs > 0 {
		opts = append(opts, parallel.WithWaitTimeout(time.Duration(c.WaitTimeoutMs)*time.Millisecond))
	}
	if c.MaxRounds > 0 {
		opts = append(opts, parallel.WithMaxRounds(c.MaxRounds))
	}
	if c.ShutdownGraceMs > 0 {
		opts = append(opts, parallel.WithShutdownGrace(time.Duration(c.ShutdownGraceMs)*time.Millisecond))
	}
	return opts
}

// level parses log_level; unknown or empty values mean info.
func (c fileConfig) level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
