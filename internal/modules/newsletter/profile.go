package newsletter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mx-space/newsletter/internal/config"
)

// ProfileField is one editable attribute on the confirmation page.
type ProfileField struct {
	Name  string
	Label string
	Rules string
}

// ProfileSchema validates profile edits against the configured fields.
type ProfileSchema struct {
	fields   []ProfileField
	validate *validator.Validate
}

// NewProfileSchema returns nil when profile editing is disabled. Each rule
// string is checked up front so a typo fails at startup rather than on the
// first edit.
func NewProfileSchema(cfg config.ProfileConfig) (*ProfileSchema, error) {
	if !cfg.Enable || len(cfg.Fields) == 0 {
		return nil, nil
	}
	p := &ProfileSchema{validate: newValidator()}
	for _, f := range cfg.Fields {
		if err := p.checkRule(f.Rules); err != nil {
			return nil, fmt.Errorf("profile field %q: %w", f.Name, err)
		}
		p.fields = append(p.fields, ProfileField{Name: f.Name, Label: f.Label, Rules: f.Rules})
	}
	return p, nil
}

func (p *ProfileSchema) checkRule(rules string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invalid rules %q: %v", rules, r)
		}
	}()
	var invalid *validator.InvalidValidationError
	if verr := p.validate.Var("", rules); errors.As(verr, &invalid) {
		return verr
	}
	return nil
}

func (p *ProfileSchema) Fields() []ProfileField {
	return append([]ProfileField(nil), p.fields...)
}

// Clean trims and validates input. Unknown names are rejected; configured
// names missing from input are validated as empty strings.
func (p *ProfileSchema) Clean(input map[string]string) (map[string]string, error) {
	known := make(map[string]struct{}, len(p.fields))
	for _, f := range p.fields {
		known[f.Name] = struct{}{}
	}

	errs := make(map[string]string)
	for name := range input {
		if _, ok := known[name]; !ok {
			errs[name] = "Unknown field."
		}
	}

	out := make(map[string]string, len(p.fields))
	for _, f := range p.fields {
		value := strings.TrimSpace(input[f.Name])
		if err := p.validate.Var(value, f.Rules); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) && len(verrs) > 0 {
				errs[f.Name] = describe(verrs[0])
				continue
			}
			return nil, err
		}
		out[f.Name] = value
	}

	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}
	return out, nil
}
