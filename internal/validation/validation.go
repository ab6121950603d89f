// Package validation checks inbound webhook payloads with
// go-playground/validator and reports field-level failures.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var e164Pattern = regexp.MustCompile(`^\+[1-9][0-9]{1,14}$`)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error lists every offending field of a payload.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	// The tags are fixed and the functions valid, registration cannot fail.
	_ = v.RegisterValidation("e164strict", func(fl validator.FieldLevel) bool {
		return IsE164(fl.Field().String())
	})
	_ = v.RegisterValidation("utcz", func(fl validator.FieldLevel) bool {
		return strings.HasSuffix(fl.Field().String(), "Z")
	})
	_ = v.RegisterValidation("isotime", func(fl validator.FieldLevel) bool {
		_, err := ParseTimestamp(fl.Field().String())
		return err == nil
	})

	return &Validator{validate: v}
}

// IsE164 reports whether s is "+" followed by 2-15 digits, the first non-zero.
func IsE164(s string) bool {
	return e164Pattern.MatchString(s)
}

// ParseTimestamp parses an ISO-8601 / RFC 3339 timestamp.
func ParseTimestamp(raw string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, raw)
}

// Struct validates s and returns *Error when any field fails.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &Error{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Message: describe(fe),
		})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "e164strict":
		return "Invalid E.164 phone number format. Must start with + followed by digits only."
	case "utcz":
		return "Timestamp must be in UTC and end with 'Z'"
	case "isotime":
		return "invalid ISO-8601 timestamp"
	}
	return fmt.Sprintf("failed on the %q rule", fe.Tag())
}
