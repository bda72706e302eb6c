// Package validation wraps go-playground/validator for request structs and
// converts its failures into client-facing validation errors.
package validation

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/zenscore/zenscore/internal/errors"
)

// Messages maps "field.tag" (json field name) or "field" to a client message.
type Messages map[string]string

// Validator checks structs against their `validate` tags.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator that reports json field names.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return &Validator{v: v}
}

// Struct validates s. The first failing field is reported using msgs, falling
// back to a generic message naming the field.
func (v *Validator) Struct(s interface{}, msgs Messages) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errors.Validation("Invalid request")
	}
	fe := fieldErrs[0]
	field := fieldPath(fe.Namespace())
	if msg, ok := msgs[field+"."+fe.Tag()]; ok {
		return errors.Validation(msg).WithDetails("field", field)
	}
	if msg, ok := msgs[field]; ok {
		return errors.Validation(msg).WithDetails("field", field)
	}
	return errors.Validation(describe(field, fe)).WithDetails("field", field)
}

// fieldPath drops the struct name and any slice index from a namespace.
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	if i := strings.Index(ns, "["); i >= 0 {
		ns = ns[:i]
	}
	return ns
}

func describe(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return fmt.Sprintf("%s is invalid", field)
}
