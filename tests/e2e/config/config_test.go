package config

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Setenv("E2E_BASEURL_AUTODETECT", "false")
	for _, k := range []string{"BASE_URL", "E2E_TIMEOUT", "HEADLESS", "SLOW_MO", "SCREENSHOTS", "VIDEOS"} {
		t.Setenv(k, "")
	}
	v := newViper()
	cfg := fromViper(v)

	assert.Equal(t, defaultBaseURL, cfg.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.True(t, cfg.Headless)
	assert.True(t, cfg.Screenshots)
	assert.False(t, cfg.Videos)
	assert.Equal(t, 0, cfg.SlowMo)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("E2E_BASEURL_AUTODETECT", "false")
	t.Setenv("BASE_URL", "http://pizza.test:8081/")
	t.Setenv("HEADLESS", "false")
	t.Setenv("SLOW_MO", "250")
	t.Setenv("E2E_TIMEOUT", "5s")

	cfg := fromViper(newViper())
	assert.Equal(t, "http://pizza.test:8081", cfg.BaseURL)
	assert.False(t, cfg.Headless)
	assert.Equal(t, 250, cfg.SlowMo)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

func TestDotEnv(t *testing.T) {
	t.Setenv("E2E_BASEURL_AUTODETECT", "false")
	t.Setenv("HEADLESS", "true")
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("BASE_URL=http://from-dotenv:4173\nHEADLESS=false\nVIDEOS=true\n"), 0o644))

	v := newViper()
	readDotEnv(v, path)
	cfg := fromViper(v)
	assert.Equal(t, "http://from-dotenv:4173", cfg.BaseURL)
	assert.True(t, cfg.Videos)
	assert.True(t, cfg.Headless, "environment wins over .env")
}

func TestMissingDotEnvIsIgnored(t *testing.T) {
	t.Setenv("BASE_URL", "")
	v := newViper()
	readDotEnv(v, filepath.Join(t.TempDir(), ".env"))
	assert.Equal(t, defaultBaseURL, v.GetString("BASE_URL"))
}

func TestReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	assert.True(t, Reachable(srv.URL))
	assert.False(t, Reachable("not a url"))
	assert.False(t, Reachable("http://127.0.0.1:1"))
}

func TestDetectKeepsReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()
	assert.Equal(t, srv.URL, detectReachableBaseURL(srv.URL))
}
