package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
backend:
  http:
    port: 9500
    allowed_origins: ["https://files.example"]
  db:
    driver: SQLite
    path: /tmp/fp.db
  storage:
    uri: mem://bucket/objects/
    max_upload_bytes: 1024
  lockout:
    max_attempts: 3
    cooldown: 90s
  log:
    level: debug
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, 9500, cfg.HTTP.Port)
	assert.Equal(t, "127.0.0.1", cfg.HTTP.Host)
	assert.Equal(t, []string{"https://files.example"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "/tmp/fp.db", cfg.DB.Path)
	assert.Equal(t, "mem://bucket/objects/", cfg.Storage.URI)
	assert.Equal(t, int64(1024), cfg.Storage.MaxUploadBytes)
	assert.Equal(t, 3, cfg.Lockout.MaxAttempts)
	assert.Equal(t, 90*time.Second, cfg.Lockout.Cooldown)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "filepower", cfg.JWT.Issuer)
	assert.Equal(t, 60, cfg.JWT.ExpMin)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Equal(t, int64(50<<20), cfg.Storage.MaxUploadBytes)
	assert.Equal(t, 5*time.Minute, cfg.Lockout.Cooldown)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownGrace)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FILEPOWER_BACKEND_DB_PASS", "s3cret")
	t.Setenv("FILEPOWER_BACKEND_HTTP_PORT", "9600")

	cfg, err := Load(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.DB.Pass)
	assert.Equal(t, 9600, cfg.HTTP.Port)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "read config")
}

func TestWatch(t *testing.T) {
	path := writeConfig(t, sample)
	var level atomic.Value
	require.NoError(t, Watch(path, func(c *Config) { level.Store(c.Log.Level) }))

	require.NoError(t, os.WriteFile(path, []byte("backend:\n  log:\n    level: warn\n"), 0o600))

	assert.Eventually(t, func() bool {
		v, _ := level.Load().(string)
		return v == "warn"
	}, 5*time.Second, 50*time.Millisecond)
}
