package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError describes a single violated constraint.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// Error collects every field violation found in one input. It is surfaced
// as HTTP 422 at the boundary; internally handlers can distinguish it
// from storage failures.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Error))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator checks entities against their struct tags. Reported field
// names come from the json tags, nested fields dotted and indexed
// ("items[0].quantity").
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Struct validates v and returns nil or an *Error listing every violated
// field.
func (va *Validator) Struct(v interface{}) error {
	err := va.validate.Struct(v)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		// Non-struct input or a bad tag; nothing field-level to report.
		return &Error{Fields: []FieldError{{Field: "", Error: err.Error()}}}
	}

	out := &Error{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field: fieldPath(fe.Namespace()),
			Error: message(fe),
		})
	}
	return out
}

// fieldPath drops the root struct name from a namespace like
// "Order.items[0].quantity".
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be %s or greater", fe.Param())
	default:
		return fmt.Sprintf("failed %q constraint", fe.Tag())
	}
}
