package newsletter

import (
	"testing"

	"github.com/mx-space/newsletter/internal/config"
)

func TestNewProfileSchema(t *testing.T) {
	if p, err := NewProfileSchema(config.ProfileConfig{}); p != nil || err != nil {
		t.Errorf("disabled schema = %v, %v, want nil, nil", p, err)
	}

	_, err := NewProfileSchema(config.ProfileConfig{
		Enable: true,
		Fields: []config.ProfileFieldConfig{{Name: "x", Rules: "no_such_rule"}},
	})
	if err == nil {
		t.Error("expected an error for an unknown validation rule")
	}

	p, err := NewProfileSchema(profileEnabled())
	if err != nil {
		t.Fatalf("NewProfileSchema() error = %v", err)
	}
	fields := p.Fields()
	if len(fields) != 2 || fields[0].Name != "full_name" || fields[0].Label != "Full name" {
		t.Errorf("Fields() = %+v", fields)
	}
}

func TestProfileSchema_Clean(t *testing.T) {
	p, err := NewProfileSchema(profileEnabled())
	if err != nil {
		t.Fatalf("NewProfileSchema() error = %v", err)
	}

	got, err := p.Clean(map[string]string{"company": "  Acme  "})
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	if got["company"] != "Acme" || got["full_name"] != "" {
		t.Errorf("Clean() = %v", got)
	}

	if _, err := p.Clean(map[string]string{"full_name": "ok"}); err == nil {
		t.Error("expected required company to fail")
	}
}
