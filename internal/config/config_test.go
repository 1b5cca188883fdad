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
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != defaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port, defaultPort)
	}
	if !cfg.IsDev() {
		t.Errorf("Env = %q, want development", cfg.Env)
	}
	if !cfg.UsesDevelopmentSecret() {
		t.Error("expected the development secret to be applied")
	}
	if cfg.Site.URL != "http://localhost:2333" {
		t.Errorf("Site.URL = %q", cfg.Site.URL)
	}
	if cfg.Newsletter.BasePath != "/newsletter" {
		t.Errorf("BasePath = %q", cfg.Newsletter.BasePath)
	}
	if cfg.Newsletter.RateLimit.Window != time.Minute {
		t.Errorf("RateLimit.Window = %v", cfg.Newsletter.RateLimit.Window)
	}
	if !strings.HasPrefix(cfg.DSN, "root:password@tcp(127.0.0.1:3306)/newsletter?") {
		t.Errorf("DSN = %q", cfg.DSN)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("RedisURL = %q", cfg.RedisURL)
	}
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
port: 8080
env: production
secret_key: s3cret
site:
  url: https://example.com/
  name: Example
database:
  driver: memory
redis:
  enable: false
newsletter:
  base_path: letters/
  token_max_age: 72h
  rate_limit:
    max: 3
    window: 30s
  profile:
    fields:
      - name: company
        rules: omitempty,max=50
webhooks:
  - url: https://hooks.example.com/in
    secret: abc
    events: [newsletter_subscribed]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 8080 || cfg.Env != "production" || cfg.Secret != "s3cret" {
		t.Errorf("unexpected top-level values: %+v", cfg)
	}
	if cfg.Site.URL != "https://example.com" {
		t.Errorf("Site.URL = %q, want trailing slash trimmed", cfg.Site.URL)
	}
	if cfg.Database.Driver != "memory" || cfg.Redis.Enable {
		t.Errorf("driver/redis = %q/%v", cfg.Database.Driver, cfg.Redis.Enable)
	}
	if cfg.Newsletter.BasePath != "/letters" {
		t.Errorf("BasePath = %q", cfg.Newsletter.BasePath)
	}
	if cfg.Newsletter.TokenMaxAge != 72*time.Hour {
		t.Errorf("TokenMaxAge = %v", cfg.Newsletter.TokenMaxAge)
	}
	if cfg.Newsletter.RateLimit.Max != 3 || cfg.Newsletter.RateLimit.Window != 30*time.Second {
		t.Errorf("RateLimit = %+v", cfg.Newsletter.RateLimit)
	}
	fields := cfg.Newsletter.Profile.Fields
	if len(fields) != 1 || fields[0].Name != "company" || fields[0].Label != "company" {
		t.Errorf("Profile.Fields = %+v", fields)
	}
	if len(cfg.Webhooks) != 1 || cfg.Webhooks[0].Events[0] != "NEWSLETTER_SUBSCRIBED" {
		t.Errorf("Webhooks = %+v", cfg.Webhooks)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "bogus: 1\n", "field bogus not found"},
		{"missing secret in production", "env: production\n", "secret is required"},
		{"bad driver", "database:\n  driver: sqlite\n", "unsupported database.driver"},
		{"bad max age", "newsletter:\n  token_max_age: soon\n", "token_max_age"},
		{"bad port", "port: 70000\n", "invalid port"},
		{"duplicate profile field", "newsletter:\n  profile:\n    fields:\n      - name: a\n      - name: a\n", "duplicate field"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Fatal("expected an error for a missing explicit config file")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	env := map[string]string{
		"NEWSLETTER_PORT":          "9000",
		"NEWSLETTER_SECRET":        "from-env",
		"NEWSLETTER_REDIS_ENABLE":  "false",
		"NEWSLETTER_TOKEN_MAX_AGE": "1h",
		"NEWSLETTER_SMTP_PASS":     "   ",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	cfg := defaultAppConfig()
	cfg.Mail.SMTP.Pass = "keep"
	if err := applyEnvOverrides(&cfg, lookup); err != nil {
		t.Fatalf("applyEnvOverrides() error = %v", err)
	}
	if cfg.Port != 9000 || cfg.Secret != "from-env" || cfg.Redis.Enable {
		t.Errorf("unexpected values: port=%d secret=%q redis=%v", cfg.Port, cfg.Secret, cfg.Redis.Enable)
	}
	if cfg.Newsletter.TokenMaxAge != time.Hour {
		t.Errorf("TokenMaxAge = %v", cfg.Newsletter.TokenMaxAge)
	}
	if cfg.Mail.SMTP.Pass != "keep" {
		t.Errorf("blank env value must not override, got %q", cfg.Mail.SMTP.Pass)
	}

	env["NEWSLETTER_PORT"] = "eighty"
	if err := applyEnvOverrides(&cfg, lookup); err == nil {
		t.Error("expected an error for a non-numeric port")
	}
}

func TestNormalizeBasePath(t *testing.T) {
	tests := map[string]string{
		"":          "/newsletter",
		"news":      "/news",
		"/news/":    "/news",
		"/":         "/",
		"  /a/b/  ": "/a/b",
	}
	for in, want := range tests {
		if got := normalizeBasePath(in); got != want {
			t.Errorf("normalizeBasePath(%q) = %q, want %q", in, got, want)
		}
	}
}
