// Package validate holds the shared validator used by request decoding and
// service-level input checks.
package validate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/lawscheduling/lawscheduling-backend/pkg/errors"
	"github.com/lawscheduling/lawscheduling-backend/pkg/slug"
)

var instance = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slug.Valid(fl.Field().String())
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// Struct validates a tagged struct.
func Struct(v any) error {
	return instance.Struct(v)
}

// Check validates v and converts failures into a VALIDATION_ERROR carrying
// per-field messages.
func Check(v any) error {
	err := instance.Struct(v)
	if err == nil {
		return nil
	}
	if details, ok := FieldErrors(err); ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
}

// Email reports whether s is a syntactically valid email address.
func Email(s string) bool {
	return instance.Var(s, "required,email") == nil
}

// FieldErrors flattens validator errors into field -> message pairs. The
// second result is false when err did not come from the validator.
func FieldErrors(err error) (map[string]string, bool) {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil, false
	}
	details := make(map[string]string, len(errs))
	for _, fieldErr := range errs {
		details[fieldErr.Field()] = message(fieldErr)
	}
	return details, true
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "slug":
		return "must contain only lowercase letters, numbers and single hyphens"
	}
	return "is invalid"
}
