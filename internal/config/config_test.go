package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("RELAY_ADDR", "")
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "localhost:7172", cfg.Relay.ListenAddr)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, 30*time.Second, cfg.Poll.LiveFlights)
	assert.Equal(t, time.Duration(0), cfg.Upstream.Timeout)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "relay.yaml")
	data := []byte(`
relay:
  listen_addr: "127.0.0.1:9000"
upstream:
  script_url: "https://va.example.com/api"
poll:
  chat: 10s
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	t.Setenv("POLL_CHAT", "15s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Relay.ListenAddr)
	assert.Equal(t, "https://va.example.com/api/", cfg.Upstream.ScriptURL)
	assert.Equal(t, 15*time.Second, cfg.Poll.Chat)
	assert.Equal(t, 60*time.Second, cfg.Poll.Bookings)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv_InvalidDuration(t *testing.T) {
	cfg := Default()
	err := applyEnv(cfg, envFrom(map[string]string{"POLL_BOOKINGS": "soon"}))
	assert.ErrorContains(t, err, "POLL_BOOKINGS")
}

func TestApplyEnv_Overrides(t *testing.T) {
	cfg := Default()
	err := applyEnv(cfg, envFrom(map[string]string{
		"CACHE_DRIVER":          "redis",
		"REDIS_DB":              "3",
		"RELAY_ALLOWED_ORIGINS": "http://a,http://b",
		"VA_SESSION":            "tok",
	}))
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.Equal(t, 3, cfg.Cache.RedisDB)
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.Relay.AllowedOrigins)
	assert.Equal(t, "tok", cfg.Upstream.Session)
	assert.Equal(t, "localhost:6379", cfg.Cache.RedisAddr())
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Cache.Driver = "memcached"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Poll.Chat = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Upstream.Timeout = -time.Second
	assert.Error(t, cfg.Validate())

	cfg = Default()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_HostMustNotBeRelay(t *testing.T) {
	cfg := Default()
	assert.NotEqual(t, "http://"+cfg.Relay.ListenAddr+"/", cfg.Host.BaseURL)

	cfg.Host.BaseURL = "http://localhost:7172"
	assert.ErrorContains(t, cfg.Validate(), "relay itself")

	cfg.Relay.ListenAddr = "127.0.0.1:9000"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://localhost:7172/", cfg.Host.BaseURL)
}
