// Package config resolves where the storefront under test lives and how the
// browser should run.
package config

import (
	"errors"
	"log"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// TestConfig holds all configuration for E2E tests
type TestConfig struct {
	BaseURL     string
	Timeout     time.Duration
	Headless    bool
	SlowMo      int
	Screenshots bool
	Videos      bool
	// ScreenshotDir and VideoDir are relative to the test package.
	ScreenshotDir string
	VideoDir      string
	Verbose       bool
}

const defaultBaseURL = "http://localhost:5173"

// storefront dev, vite preview, and a plain static server
var candidatePorts = []string{"5173", "4173", "3000"}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("BASE_URL", defaultBaseURL)
	v.SetDefault("E2E_TIMEOUT", 30*time.Second)
	v.SetDefault("HEADLESS", true)
	v.SetDefault("SLOW_MO", 0)
	v.SetDefault("SCREENSHOTS", true)
	v.SetDefault("VIDEOS", false)
	v.SetDefault("SCREENSHOT_DIR", "screenshots")
	v.SetDefault("VIDEO_DIR", "videos")
	v.SetDefault("E2E_BASEURL_AUTODETECT", true)
	v.SetDefault("E2E_VERBOSE", false)
	v.AutomaticEnv()
	return v
}

// readDotEnv merges KEY=VALUE lines from path. Real environment variables
// still win because AutomaticEnv is checked before config values.
func readDotEnv(v *viper.Viper, path string) {
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			log.Printf("[e2e-config] ignoring %s: %v", path, err)
		}
	}
}

// GetConfig returns the test configuration from .env and the environment.
func GetConfig() *TestConfig {
	v := newViper()
	readDotEnv(v, ".env")
	return fromViper(v)
}

func fromViper(v *viper.Viper) *TestConfig {
	baseURL := strings.TrimSuffix(v.GetString("BASE_URL"), "/")
	if v.GetBool("E2E_BASEURL_AUTODETECT") {
		baseURL = detectReachableBaseURL(baseURL)
	}
	log.Printf("[e2e-config] Resolved BaseURL=%s", baseURL)

	return &TestConfig{
		BaseURL:       baseURL,
		Timeout:       v.GetDuration("E2E_TIMEOUT"),
		Headless:      v.GetBool("HEADLESS"),
		SlowMo:        v.GetInt("SLOW_MO"),
		Screenshots:   v.GetBool("SCREENSHOTS"),
		Videos:        v.GetBool("VIDEOS"),
		ScreenshotDir: v.GetString("SCREENSHOT_DIR"),
		VideoDir:      v.GetString("VIDEO_DIR"),
		Verbose:       v.GetBool("E2E_VERBOSE"),
	}
}

// detectReachableBaseURL keeps initial when it answers, otherwise tries the
// usual local storefront ports.
func detectReachableBaseURL(initial string) string {
	start := time.Now()
	if Reachable(initial) {
		return initial
	}

	var candidates []string
	if u, err := url.Parse(initial); err == nil && u.Port() != "" {
		candidates = append(candidates, "http://localhost:"+u.Port(), "http://127.0.0.1:"+u.Port())
	}
	for _, p := range candidatePorts {
		candidates = append(candidates, "http://localhost:"+p)
	}

	seen := map[string]struct{}{initial: {}}
	tried := []string{initial}
	for _, c := range candidates {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		tried = append(tried, c)
		if Reachable(c) {
			log.Printf("[e2e-config] Auto-detect switched BaseURL %s -> %s (%.0fms; order=%v)", initial, c, time.Since(start).Seconds()*1000, tried)
			return c
		}
	}
	log.Printf("[e2e-config] Auto-detect kept unreachable BaseURL=%s (tried=%v in %.0fms)", initial, tried, time.Since(start).Seconds()*1000)
	return initial
}

// Reachable reports whether base accepts TCP and answers an HTTP GET.
func Reachable(base string) bool {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return false
	}
	host := u.Host
	if u.Port() == "" {
		if u.Scheme == "https" {
			host += ":443"
		} else {
			host += ":80"
		}
	}
	d := net.Dialer{Timeout: 250 * time.Millisecond}
	conn, err := d.Dial("tcp", host)
	if err != nil {
		return false
	}
	_ = conn.Close()

	client := &http.Client{Timeout: 800 * time.Millisecond}
	resp, err := client.Get(base + "/")
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return true
}
