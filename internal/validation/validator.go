// Package validation checks and sanitizes inbound catalog writes.
//
// Two layers share one go-playground/validator instance: struct validation of
// domain documents before they are persisted, and the per-route form pipeline
// (see Pipeline) that runs field checks and sanitizers against a request body.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	domainerrors "github.com/locallibrary/catalog/internal/errors"
)

// Custom validator tags.
const (
	tagISO8601 = "iso8601"

	// tagTextMin and tagTextMax bound the length of stored text as it was
	// entered, before Escape turned characters into entities.
	tagTextMin = "textmin"
	tagTextMax = "textmax"
)

// iso8601Layouts are the date and date-time shapes accepted as ISO-8601.
var iso8601Layouts = []string{
	"2006",
	"2006-01",
	"2006-01-02",
	"20060102",
	"2006-01-02T15:04",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator configured for catalog documents and forms.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Use JSON tag names in error details, they match the form field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation(tagISO8601, func(fl validator.FieldLevel) bool {
		_, ok := ParseISO8601(fl.Field().String())
		return ok
	})

	_ = v.RegisterValidation(tagTextMin, func(fl validator.FieldLevel) bool {
		return textLen(fl.Field().String()) >= paramInt(fl.Param())
	})
	_ = v.RegisterValidation(tagTextMax, func(fl validator.FieldLevel) bool {
		return textLen(fl.Field().String()) <= paramInt(fl.Param())
	})

	return &Validator{v: v}
}

// textLen counts the runes of s with entities decoded.
func textLen(s string) int {
	return utf8.RuneCountInString(Unescape(s))
}

func paramInt(param string) int {
	n, _ := strconv.Atoi(param)
	return n
}

// Validate validates a struct and returns a domain validation error whose
// details map field names to messages.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// Var reports whether value satisfies the validator tag expression.
func (v *Validator) Var(value any, tag string) bool {
	return v.v.Var(value, tag) == nil
}

// formatError converts validator errors to domain errors.
func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fieldErrors[e.Field()] = friendlyMessage(e.Tag(), e.Param())
	}

	return domainerrors.ValidationWithDetails("validation failed", fieldErrors)
}

// friendlyMessage returns the default message for a failed tag.
func friendlyMessage(tag, param string) string {
	switch tag {
	case "required":
		return "is required"
	case "min", tagTextMin:
		return fmt.Sprintf("must be at least %s characters", param)
	case "max", tagTextMax:
		return fmt.Sprintf("must not exceed %s characters", param)
	case "len":
		return fmt.Sprintf("must be exactly %s characters", param)
	case "alphanum":
		return "must contain only letters and digits"
	case "oneof":
		return "must be one of: " + param
	case tagISO8601:
		return "must be an ISO-8601 date"
	default:
		return "is invalid"
	}
}

// ParseISO8601 parses s as an ISO-8601 date or date-time.
func ParseISO8601(s string) (time.Time, bool) {
	for _, layout := range iso8601Layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
