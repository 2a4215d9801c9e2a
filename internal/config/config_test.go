package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv(EnvServer, "")
	t.Setenv(EnvSheetsAPIKey, "")
	return dir
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestDefaults(t *testing.T) {
	isolate(t)
	cfg := Default()

	assert.Equal(t, "http://localhost:5000", cfg.ServerURL)
	assert.Equal(t, 500*time.Millisecond, cfg.Session.SettleDelay)
	assert.Equal(t, 10*time.Second, cfg.Session.InitTimeout)
	assert.Equal(t, 4, cfg.Session.ConfirmAttempts)
	assert.Equal(t, 30*time.Second, cfg.MonitorInterval)
	assert.Equal(t, filepath.Join(cfg.CacheDir, "cache.db"), cfg.DBPath)
	assert.NoError(t, cfg.Validate())
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadOverlaysYAML(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "cfg.yaml")
	writeFile(t, path, `
server: https://events.example.edu/
log_level: debug
event_list_ttl: 2m
session:
  settle_delay: 250ms
  confirm_attempts: 6
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://events.example.edu", cfg.ServerURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2*time.Minute, cfg.EventListTTL)
	assert.Equal(t, 250*time.Millisecond, cfg.Session.SettleDelay)
	assert.Equal(t, 6, cfg.Session.ConfirmAttempts)
	assert.Equal(t, 10*time.Second, cfg.Session.InitTimeout, "unset keys keep defaults")
}

func TestLoadReadsDefaultPath(t *testing.T) {
	isolate(t)
	writeFile(t, DefaultPath(), "monitor_interval: 1m\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.MonitorInterval)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "cfg.yaml")
	writeFile(t, path, "server: https://file.example.edu\n")
	t.Setenv(EnvServer, "https://env.example.edu")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.edu", cfg.ServerURL)
}

func TestSheetsAPIKey(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "cfg.yaml")
	writeFile(t, path, "sheets_api_key: from-file\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.SheetsAPIKey)

	t.Setenv(EnvSheetsAPIKey, "from-env")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.SheetsAPIKey)
}

func TestCacheDirMovesDefaultFiles(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "cfg.yaml")
	writeFile(t, path, "cache_dir: /tmp/ce\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/ce", "cache.db"), cfg.DBPath)
	assert.Equal(t, filepath.Join("/tmp/ce", "debug.log"), cfg.LogPath)
}

func TestLoadRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed yaml", "server: [\n"},
		{"bad duration", "event_list_ttl: soon\n"},
		{"no scheme", "server: events.example.edu\n"},
		{"negative attempts", "session:\n  confirm_attempts: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			path := filepath.Join(dir, "cfg.yaml")
			writeFile(t, path, tt.body)

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSessionOptions(t *testing.T) {
	isolate(t)
	opts := Default().SessionOptions()

	assert.Equal(t, 500*time.Millisecond, opts.SettleDelay)
	assert.Equal(t, 4*time.Second, opts.MaxBackoff)
	assert.Equal(t, 4, opts.ConfirmAttempts)
	assert.Nil(t, opts.OnChange)
}
