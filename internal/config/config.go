// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// APIBase is the backend base URL, e.g. https://api.example.com.
	// May be empty: the transport reports it as a fatal configuration
	// error on first use rather than a retryable failure.
	APIBase string

	// Token is the bearer credential attached to every request when set.
	Token string

	// RequestTimeout bounds every outbound call.
	RequestTimeout time.Duration

	// DataDir holds local durable state (progress marks, session cache,
	// debriefs). Defaults to ~/.compass.
	DataDir string

	// DBPath is the SQLite database inside DataDir.
	DBPath string
}

// Load reads configuration from a .env file (when present) and the
// environment.
func Load() (*Config, error) {
	// Best-effort: a missing .env is the common case in production.
	_ = godotenv.Load()

	dataDir := getEnv("COMPASS_DATA_DIR", "")
	if dataDir == "" {
		dataDir = defaultDataDir()
	}

	cfg := &Config{
		APIBase:        strings.TrimRight(getEnv("COMPASS_API_BASE", ""), "/"),
		Token:          getEnv("COMPASS_API_TOKEN", ""),
		RequestTimeout: time.Duration(getEnvInt("COMPASS_REQUEST_TIMEOUT_MS", 20000)) * time.Millisecond,
		DataDir:        dataDir,
		DBPath:         filepath.Join(dataDir, "compass.db"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are usable.
// APIBase is deliberately not required here; see Config.APIBase.
func (c *Config) Validate() error {
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("COMPASS_REQUEST_TIMEOUT_MS must be > 0")
	}
	if c.DataDir == "" {
		return fmt.Errorf("COMPASS_DATA_DIR cannot be empty")
	}
	return nil
}

// IsDevelopment returns true when pointed at a local backend.
func (c *Config) IsDevelopment() bool {
	return c.APIBase == "" ||
		strings.Contains(c.APIBase, "localhost") ||
		strings.Contains(c.APIBase, "127.0.0.1")
}

func defaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv("HOME")
		if homeDir == "" {
			homeDir = "."
		}
	}
	return filepath.Join(homeDir, ".compass")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}
