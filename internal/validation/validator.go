// Package validation wraps go-playground/validator for form structs and turns
// its errors into per-field messages for inline display.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator validates structs tagged with `binding` or `validate`.
type Validator struct {
	validate *validator.Validate
}

// New returns a validator keyed on the same `binding` tags gin uses, with
// field names reported by their `form` tag.
func New() *Validator {
	v := validator.New()
	v.SetTagName("binding")
	v.RegisterTagNameFunc(fieldName)
	return &Validator{validate: v}
}

// Struct validates s.
func (v *Validator) Struct(s any) error {
	return v.validate.Struct(s)
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"form", "json"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// FieldErrors maps each failing field to a human readable message. It returns
// nil if err is not a validation failure.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if name == "" {
			name = fe.StructField()
		}
		name = strings.ToLower(name)
		if _, seen := out[name]; seen {
			continue
		}
		out[name] = Message(fe)
	}
	return out
}

// Message renders one validation failure.
func Message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "This field is required"
	case "email":
		return "Enter a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("Must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("Must be at most %s", fe.Param())
	case "oneof":
		return "Must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gtefield":
		return fmt.Sprintf("Must not be less than %s", strings.ToLower(fe.Param()))
	case "datetime":
		return "Enter a date as " + fe.Param()
	case "hostname", "hostname_rfc1123":
		return "Enter a valid host name"
	case "url":
		return "Enter a valid URL"
	}
	return "Invalid value"
}

// ValidateStruct lets the validator replace gin's binding.Validator so bound
// forms report errors under their form names.
func (v *Validator) ValidateStruct(obj any) error {
	if obj == nil {
		return nil
	}
	val := reflect.ValueOf(obj)
	for val.Kind() == reflect.Pointer {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil
	}
	return v.validate.Struct(obj)
}

// Engine returns the underlying *validator.Validate.
func (v *Validator) Engine() any {
	return v.validate
}
