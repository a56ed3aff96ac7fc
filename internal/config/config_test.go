package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"SNAPSHOT_URL", "PORT", "HTTP_TIMEOUT_SECONDS", "LOG_LEVEL", "PAGE_SIZE", "LOAD_RETRIES", "RETRY_BASE_MS"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 50, cfg.PageSize)
	assert.Equal(t, 2, cfg.LoadRetries)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("SNAPSHOT_URL", "http://example.test/data.json")
	t.Setenv("PORT", "9090")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "3")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PAGE_SIZE", "25")
	t.Setenv("RETRY_BASE_MS", "0")

	cfg := FromEnv()
	assert.Equal(t, "http://example.test/data.json", cfg.SnapshotURL)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 25, cfg.PageSize)
	assert.Zero(t, cfg.RetryBase)
}

func TestLoadYAMLWithEnvPrecedence(t *testing.T) {
	for _, k := range []string{"SNAPSHOT_URL", "PORT", "HTTP_TIMEOUT_SECONDS", "LOG_LEVEL", "PAGE_SIZE", "LOAD_RETRIES", "RETRY_BASE_MS"} {
		t.Setenv(k, "")
	}
	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
snapshot_url: ./testdata/data.json
port: "7000"
http_timeout: 4s
log_level: warn
page_size: 20
load_retries: 0
retry_base: 250ms
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "./testdata/data.json", cfg.SnapshotURL)
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, 4*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.Equal(t, 20, cfg.PageSize)
	assert.Zero(t, cfg.LoadRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryBase)

	t.Setenv("PAGE_SIZE", "10")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.PageSize)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("PAGE_SIZE", "")
	t.Setenv("LOAD_RETRIES", "")
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("page_size: 0\nload_retries: -1\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page_size")
	assert.Contains(t, err.Error(), "load_retries")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
