// Package config loads server settings from the environment. A .env
// file in the working directory is read first so local runs do not need
// exported variables.
package config

import (
	"crypto/rand"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/iudanet/masterdata/internal/catalog"
)

// Defaults applied when the environment leaves a knob unset.
const (
	DefaultRunAddress  = ":8080"
	DefaultDataFile    = "data/products.json"
	DefaultHistoryPath = "data/history.db"
)

// Config is the full server configuration.
type Config struct {
	// RunAddress is the listen address, host:port.
	RunAddress string

	// DatabasePath selects the SQLite backend when set. Empty means
	// the flat-file backend.
	DatabasePath string

	// DataFile is the master JSON file of the flat-file backend.
	DataFile string

	// HistoryPath is the bbolt file holding undo snapshots and the
	// modified counter.
	HistoryPath string

	// SessionSecret signs session tokens. Generated per process when
	// unset, which invalidates outstanding tokens on restart.
	SessionSecret []byte

	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// PageLimits bound the page_size query parameter.
	PageLimits catalog.PageLimits
}

// Load reads the configuration. Missing .env is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		RunAddress:   envOr("RUN_ADDRESS", DefaultRunAddress),
		DatabasePath: os.Getenv("DATABASE_PATH"),
		DataFile:     envOr("DATA_FILE", DefaultDataFile),
		HistoryPath:  envOr("HISTORY_PATH", DefaultHistoryPath),
		LogLevel:     envOr("LOG_LEVEL", "info"),
		PageLimits:   catalog.DefaultPageLimits,
	}

	if secret := os.Getenv("SESSION_SECRET"); secret != "" {
		cfg.SessionSecret = []byte(secret)
	} else {
		cfg.SessionSecret = make([]byte, 32)
		if _, err := rand.Read(cfg.SessionSecret); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
	}

	var err error
	if cfg.PageLimits.Default, err = envInt("PAGE_SIZE_DEFAULT", cfg.PageLimits.Default); err != nil {
		return nil, err
	}
	if cfg.PageLimits.Min, err = envInt("PAGE_SIZE_MIN", cfg.PageLimits.Min); err != nil {
		return nil, err
	}
	if cfg.PageLimits.Max, err = envInt("PAGE_SIZE_MAX", cfg.PageLimits.Max); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Backend names the active product store for logs and the health
// endpoint.
func (c *Config) Backend() string {
	if c.DatabasePath != "" {
		return "sqlite"
	}
	return "file"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}
