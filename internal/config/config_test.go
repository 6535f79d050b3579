package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, ":3000", cfg.Server.GetServerAddr())
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "purchase-with-login", cfg.Scenario.Name)
	assert.Equal(t, DefaultSecret, cfg.JWT.Secret)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.True(t, cfg.CORS.Enabled)
	assert.Equal(t, []string{"*"}, cfg.CORS.Origins)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mock.yaml")
	content := `
server:
  host: 127.0.0.1
  port: 3100
scenario:
  name: franchisee-stores
  dir: ./scenarios
  watch: true
jwt:
  secret: test-secret
  ttl: 1h
cors:
  origins: ["http://localhost:5173"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:3100", cfg.Server.GetServerAddr())
	assert.Equal(t, "franchisee-stores", cfg.Scenario.Name)
	assert.True(t, cfg.Scenario.Watch)
	assert.Equal(t, time.Hour, cfg.JWT.TTL)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORS.Origins)
}

func TestEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PIZZAMOCK_SCENARIO_NAME", "login-logout")
	t.Setenv("PIZZAMOCK_SERVER_PORT", "3333")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "login-logout", cfg.Scenario.Name)
	assert.Equal(t, 3333, cfg.Server.Port)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))
	_, err = Load(New(), path)
	assert.Error(t, err)
}

func TestValidator(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 3000},
			Scenario: ScenarioConfig{Name: "home"},
			JWT:      JWTConfig{Secret: "test-secret", TTL: time.Hour},
			Metrics:  MetricsConfig{Enabled: true, Path: "/metrics"},
		}
	}

	v := NewValidator(valid())
	require.NoError(t, v.Validate())
	assert.Empty(t, v.Warnings())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port", func(c *Config) { c.Server.Port = 70000 }, "out of range"},
		{"scenario", func(c *Config) { c.Scenario.Name = "" }, "scenario.name"},
		{"secret", func(c *Config) { c.JWT.Secret = "" }, "jwt.secret"},
		{"ttl", func(c *Config) { c.JWT.TTL = -time.Second }, "jwt.ttl"},
		{"metrics path", func(c *Config) { c.Metrics.Path = "metrics" }, "metrics.path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := NewValidator(cfg).Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	cfg := valid()
	cfg.JWT.Secret = DefaultSecret
	cfg.Scenario.Watch = true
	v = NewValidator(cfg)
	require.NoError(t, v.Validate())
	assert.Len(t, v.Warnings(), 2)
}
