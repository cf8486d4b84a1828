package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "zengenius.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadDefaultsWithMissingFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ZENGENIUS_STORAGE_PATH", filepath.Join(dir, "data", "zengenius.db"))

	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.HTTPPort != 5000 {
		t.Errorf("expected default http port 5000, got %d", cfg.Server.HTTPPort)
	}
	if cfg.Storage.Type != "sqlite" {
		t.Errorf("expected sqlite storage, got %s", cfg.Storage.Type)
	}
	if cfg.GenAI.Model != "gemini-1.5-flash" {
		t.Errorf("unexpected default model %s", cfg.GenAI.Model)
	}
	if cfg.Auth.Enabled {
		t.Error("expected auth disabled by default")
	}
	if _, err := os.Stat(filepath.Join(dir, "data")); err != nil {
		t.Errorf("expected storage directory to be created: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
server:
  http_port: 8080
  allowed_origins:
    - https://app.example.com
storage:
  type: sqlite
  path: `+filepath.Join(dir, "z.db")+`
auth:
  enabled: true
  domain: tenant.example.com
  audience: https://api.example.com
analytics:
  timezone: Australia/Sydney
  session_length: 45m
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.HTTPPort != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.HTTPPort)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "https://app.example.com" {
		t.Errorf("unexpected origins %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Auth.Issuer != "https://tenant.example.com/" {
		t.Errorf("expected derived issuer, got %s", cfg.Auth.Issuer)
	}
	if cfg.Auth.JWKSURL != "https://tenant.example.com/.well-known/jwks.json" {
		t.Errorf("expected derived jwks url, got %s", cfg.Auth.JWKSURL)
	}
	loc, err := cfg.Analytics.Location()
	if err != nil || loc.String() != "Australia/Sydney" {
		t.Errorf("unexpected location %v (%v)", loc, err)
	}
	if got := ParseDuration(cfg.Analytics.SessionLength, 0); got != 45*time.Minute {
		t.Errorf("expected 45m session length, got %s", got)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, "storage:\n  path: "+filepath.Join(dir, "z.db")+"\n")
	t.Setenv("ZENGENIUS_SERVER_HTTP_PORT", "7000")
	t.Setenv("ZENGENIUS_GENAI_API_KEY", "secret")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.HTTPPort != 7000 {
		t.Errorf("expected env port 7000, got %d", cfg.Server.HTTPPort)
	}
	if cfg.GenAI.APIKey != "secret" {
		t.Errorf("expected api key from env, got %q", cfg.GenAI.APIKey)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "z.db")

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"bad port", "server:\n  http_port: 70000\n", "invalid HTTP port"},
		{"bad storage type", "storage:\n  type: mongo\n  path: " + dbPath + "\n", "unsupported storage type"},
		{"bad duration", "genai:\n  timeout: soon\n", "genai.timeout"},
		{"bad timezone", "analytics:\n  timezone: Mars/Olympus\n", "analytics.timezone"},
		{"auth without provider", "auth:\n  enabled: true\n", "auth is enabled"},
		{"bad upload size", "uploads:\n  max_size_mb: 0\n", "max_size_mb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := tt.body
			if !strings.HasPrefix(body, "storage:") {
				body = "storage:\n  path: " + dbPath + "\n" + body
			}
			path := writeConfig(t, body)
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestHMACSecretSkipsJWKSDerivation(t *testing.T) {
	cfg := &Config{
		Server:  ServerConfig{HTTPPort: 5000},
		Storage: StorageConfig{Type: "redis", Redis: RedisConfig{Host: "localhost"}},
		Auth:    AuthConfig{Enabled: true, Domain: "tenant.example.com", HMACSecret: "dev"},
		Uploads: UploadsConfig{Dir: "uploads", MaxSizeMB: 1},
	}
	if err := validate(cfg); err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if cfg.Auth.JWKSURL != "" {
		t.Errorf("expected no jwks url with hmac secret, got %s", cfg.Auth.JWKSURL)
	}
	if cfg.Auth.Issuer != "https://tenant.example.com/" {
		t.Errorf("expected issuer derived from domain, got %s", cfg.Auth.Issuer)
	}
}
