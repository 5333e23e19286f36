package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("COMPASS_DATA_DIR", t.TempDir())
	t.Setenv("COMPASS_API_BASE", "")
	t.Setenv("COMPASS_API_TOKEN", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.APIBase)
	assert.Empty(t, cfg.Token)
	assert.Equal(t, 20*time.Second, cfg.RequestTimeout)
	assert.Equal(t, filepath.Join(cfg.DataDir, "compass.db"), cfg.DBPath)
	assert.DirExists(t, cfg.DataDir)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("COMPASS_DATA_DIR", t.TempDir())
	t.Setenv("COMPASS_API_BASE", "https://api.example.com/")
	t.Setenv("COMPASS_API_TOKEN", "secret")
	t.Setenv("COMPASS_REQUEST_TIMEOUT_MS", "5000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.APIBase, "trailing slash is trimmed")
	assert.Equal(t, "secret", cfg.Token)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
}

func TestLoadBadTimeoutFallsBack(t *testing.T) {
	t.Setenv("COMPASS_DATA_DIR", t.TempDir())
	t.Setenv("COMPASS_REQUEST_TIMEOUT_MS", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 20*time.Second, cfg.RequestTimeout)
}

func TestValidate(t *testing.T) {
	cfg := &Config{RequestTimeout: time.Second, DataDir: "/tmp/x"}
	assert.NoError(t, cfg.Validate())

	cfg.RequestTimeout = 0
	assert.Error(t, cfg.Validate())

	cfg.RequestTimeout = time.Second
	cfg.DataDir = ""
	assert.Error(t, cfg.Validate())
}

func TestIsDevelopment(t *testing.T) {
	assert.True(t, (&Config{}).IsDevelopment())
	assert.True(t, (&Config{APIBase: "http://localhost:8000"}).IsDevelopment())
	assert.True(t, (&Config{APIBase: "http://127.0.0.1:8000"}).IsDevelopment())
	assert.False(t, (&Config{APIBase: "https://api.example.com"}).IsDevelopment())
}
