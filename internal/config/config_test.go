package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ELIBRARY_API_BASE_URL", "ELIBRARY_LOG_LEVEL", "ELIBRARY_REQUEST_TIMEOUT",
		"ELIBRARY_TOKEN_STORE", "ELIBRARY_TOKEN_PATH", "REDIS_ADDR", "REDIS_PASSWORD",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:8080/api" {
		t.Fatalf("apiBaseURL = %q, want the default", cfg.APIBaseURL)
	}
	if cfg.RequestTimeout != "10s" {
		t.Fatalf("requestTimeout = %q, want 10s", cfg.RequestTimeout)
	}
	if cfg.TokenStore != "file" {
		t.Fatalf("tokenStore = %q, want file", cfg.TokenStore)
	}
	if cfg.TokenPath == "" {
		t.Fatalf("tokenPath should default to a path under the home directory")
	}
}

func TestLoadReadsYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "apiBaseURL: https://library.example.com/api\nlogLevel: debug\nrequestTimeout: 30s\ntokenStore: file\ntokenPath: /tmp/elibrary-token\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIBaseURL != "https://library.example.com/api" {
		t.Fatalf("apiBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("logLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.TokenPath != "/tmp/elibrary-token" {
		t.Fatalf("tokenPath = %q", cfg.TokenPath)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("apiBaseURL: http://file.example.com/api\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ELIBRARY_API_BASE_URL", "http://env.example.com/api")
	t.Setenv("ELIBRARY_REQUEST_TIMEOUT", "5s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIBaseURL != "http://env.example.com/api" {
		t.Fatalf("apiBaseURL = %q, want the env override", cfg.APIBaseURL)
	}
	if cfg.RequestTimeout != "5s" {
		t.Fatalf("requestTimeout = %q, want 5s", cfg.RequestTimeout)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"bad url", map[string]string{"ELIBRARY_API_BASE_URL": "not a url"}},
		{"bad token store", map[string]string{"ELIBRARY_TOKEN_STORE": "vault"}},
		{"redis without addr", map[string]string{"ELIBRARY_TOKEN_STORE": "redis"}},
		{"bad timeout", map[string]string{"ELIBRARY_REQUEST_TIMEOUT": "soon"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
				t.Fatalf("expected a validation error")
			}
		})
	}
}

func TestRedisStoreAcceptsAddrFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ELIBRARY_TOKEN_STORE", "redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TokenStore != "redis" || cfg.RedisAddr != "localhost:6379" {
		t.Fatalf("cfg = %+v, want redis store at localhost:6379", cfg)
	}
}

func TestParseRequestTimeout(t *testing.T) {
	if d, err := ParseRequestTimeout("45s"); err != nil || d != 45*time.Second {
		t.Fatalf("ParseRequestTimeout(45s) = %v, %v", d, err)
	}
	if d, err := ParseRequestTimeout(""); err != nil || d != 0 {
		t.Fatalf("ParseRequestTimeout(\"\") = %v, %v", d, err)
	}
	if _, err := ParseRequestTimeout("-1s"); err == nil {
		t.Fatalf("negative timeout should be rejected")
	}
}

func TestDefaultPathHonorsEnv(t *testing.T) {
	t.Setenv("ELIBRARY_CONFIG", "/etc/elibrary/config.yaml")
	if got := DefaultPath(); got != "/etc/elibrary/config.yaml" {
		t.Fatalf("DefaultPath() = %q", got)
	}
}
