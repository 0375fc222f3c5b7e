// Package config resolves run configuration from the environment, with
// defaults suitable for local use. A .env file, when present, is loaded
// by the CLI entry point before this package reads anything.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the settings shared by CLI commands.
type Config struct {
	// DatabaseURL is a file path or a libsql URL.
	DatabaseURL string

	// StagingTTL is how long a pending stage stays committable.
	StagingTTL time.Duration

	// Workers caps parallel file processing.
	Workers int

	Debug bool
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		DatabaseURL: ".regraft/regraft.db",
		StagingTTL:  15 * time.Minute,
		Workers:     8,
	}
}

// FromEnv layers REGRAFT_* environment variables over the defaults.
func FromEnv() Config {
	cfg := Default()
	if v := os.Getenv("REGRAFT_DB"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REGRAFT_STAGING_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.StagingTTL = d
		}
	}
	if v := os.Getenv("REGRAFT_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("REGRAFT_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}
	return cfg
}
