package newsletter

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrDuplicateSubscription = errors.New("newsletter: address already subscribed")
	ErrNotSubscribed         = errors.New("newsletter: address not subscribed")
	ErrInvalidOrExpiredToken = errors.New("newsletter: invalid or expired token")
	ErrProfileDisabled       = errors.New("newsletter: profile editing is disabled")
)

const (
	MsgDuplicateSubscription = "This address is already subscribed to our newsletter."
	MsgNotSubscribed         = "This address is not subscribed to our newsletter."
	MsgInvalidToken          = "This link is invalid or has expired."
	MsgSubscribeRequested    = "You should receive a confirmation email shortly."
	MsgUnsubscribed          = "You have been unsubscribed."
	MsgConfirmed             = "Your subscription has been confirmed."
	MsgActivated             = "Your subscription has been activated."
	MsgActive                = "Your subscription is active."
	MsgAlreadyActive         = "Your subscription is already active."
	MsgProfileUpdated        = "Thank you! The subscription has been updated."
	MsgMalformedForm         = "The form could not be read. Please try again."
)

// ValidationError carries user-facing messages keyed by form field. Cause,
// when set, is one of the sentinel errors above.
type ValidationError struct {
	Fields map[string]string
	Cause  error
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return e.Cause }

// Message returns a single line suitable for a JSON error body.
func (e *ValidationError) Message() string {
	if len(e.Fields) == 1 {
		for _, msg := range e.Fields {
			return msg
		}
	}
	return "Please correct the errors below."
}

func fieldError(field, message string, cause error) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}, Cause: cause}
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationErrorFrom converts validator output into a ValidationError;
// other errors are returned unchanged.
func validationErrorFrom(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		if _, seen := out.Fields[fe.Field()]; !seen {
			out.Fields[fe.Field()] = describe(fe)
		}
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "oneof":
		return fmt.Sprintf("Select a valid choice. %v is not one of the available choices.", fe.Value())
	case "url", "http_url":
		return "Enter a valid URL."
	default:
		return fmt.Sprintf("Enter a valid value (%s).", fe.Tag())
	}
}
