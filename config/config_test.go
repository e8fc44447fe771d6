package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "seed:\n  demo_data: true\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10.0, cfg.Server.RateLimitPerSec)
	assert.Equal(t, 5, cfg.Server.RateLimitBurst)
	assert.Equal(t, 5*time.Minute, cfg.Server.CacheTTL)
	assert.Equal(t, "UTC", cfg.Server.Timezone)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.NotEmpty(t, cfg.Database.DSN)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 3600, cfg.Push.TTL)
	assert.False(t, cfg.Push.Enabled())
	assert.Equal(t, 1, cfg.WorkerPool.Size)
	assert.False(t, cfg.Ingest.Enabled)
	assert.Equal(t, time.Minute, cfg.Ingest.Interval)
	assert.Equal(t, 100, cfg.Ingest.Request.PageSize)
	assert.True(t, cfg.Seed.DemoData)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  port: 9090
  cache_ttl_seconds: 30
  timezone: America/Phoenix
database:
  driver: postgres
  dsn: "host=localhost user=crowd dbname=crowd"
push:
  vapid_public_key: pub
  vapid_private_key: priv
ingest:
  enabled: true
  interval_seconds: 15
  request:
    url: http://feed.local/occupancy
    pageSize: 20
    headers:
      X-Token: abc
`))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.CacheTTL)
	assert.Equal(t, "America/Phoenix", cfg.Server.Timezone)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "host=localhost user=crowd dbname=crowd", cfg.Database.DSN)
	assert.True(t, cfg.Push.Enabled())
	assert.True(t, cfg.Ingest.Enabled)
	assert.Equal(t, 15*time.Second, cfg.Ingest.Interval)
	assert.Equal(t, 20, cfg.Ingest.Request.PageSize)
	assert.Equal(t, "abc", cfg.Ingest.Request.Headers["X-Token"])
	assert.False(t, cfg.Seed.DemoData)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "server: [not, a, map]\n"))
	assert.Error(t, err)
}

func TestLoad_SampleConfig(t *testing.T) {
	cfg, err := Load("config.yaml")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.WorkerPool.Size)
	assert.True(t, cfg.Seed.DemoData)
}
