package app

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mx-space/newsletter/internal/config"
	"go.uber.org/zap"
)

func memoryConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	body := "env: test\nsecret: test-secret\ndatabase:\n  driver: memory\nredis:\n  enable: false\nsite:\n  url: http://news.test\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	return cfg
}

func TestNew_MemoryStack(t *testing.T) {
	a, err := New(zap.NewNop(), memoryConfig(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Shutdown()

	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"database":"memory"`) {
		t.Errorf("healthz = %d %s", w.Code, w.Body.String())
	}

	form := url.Values{"email": {"a@example.com"}, "action": {"subscribe"}}
	req := httptest.NewRequest(http.MethodPost, "/newsletter", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = httptest.NewRecorder()
	a.Router().ServeHTTP(w, req)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/newsletter" {
		t.Errorf("submit = %d, Location %q", w.Code, w.Header().Get("Location"))
	}

	w = httptest.NewRecorder()
	a.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/newsletter/subscriptions", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("admin list without a configured token = %d, want 401", w.Code)
	}
}

func TestMatchOriginPattern(t *testing.T) {
	tests := []struct {
		pattern, host string
		want          bool
	}{
		{"example.com", "example.com", true},
		{"*.example.com", "news.example.com", true},
		{"*.example.com", "example.org", false},
		{"localhost:*", "localhost:3000", true},
		{"localhost:*", "otherhost:3000", false},
	}
	for _, tt := range tests {
		if got := matchOriginPattern(tt.pattern, tt.host); got != tt.want {
			t.Errorf("matchOriginPattern(%q, %q) = %v, want %v", tt.pattern, tt.host, got, tt.want)
		}
	}
	if got := extractOriginHost("https://news.example.com:8443"); got != "news.example.com:8443" {
		t.Errorf("extractOriginHost() = %q", got)
	}
}

func TestParseTimezoneLocation(t *testing.T) {
	loc, err := parseTimezoneLocation("+08:00")
	if err != nil {
		t.Fatalf("parseTimezoneLocation() error = %v", err)
	}
	_, offset := time.Date(2026, 1, 1, 0, 0, 0, 0, loc).Zone()
	if offset != 8*3600 {
		t.Errorf("offset = %d", offset)
	}
	if _, err := parseTimezoneLocation("Mars/Olympus"); err == nil {
		t.Error("expected an error for an unknown zone")
	}
}
