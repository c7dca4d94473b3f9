package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/util"
)

// Validator validates request DTOs through struct tags and reports failures
// as domain.ValidationErrors keyed by JSON field name.
type Validator struct {
	v *validator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
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

// Struct validates s. It returns nil or domain.ValidationErrors.
func (val *Validator) Struct(s interface{}) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.NewInternalError("validation failed", err)
	}

	out := make(domain.ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, translate(fe))
	}
	return out
}

// SessionID validates a session identifier taken from the path.
func (val *Validator) SessionID(id string) domain.ValidationErrors {
	if strings.TrimSpace(id) == "" {
		return domain.ValidationErrors{domain.NewMissingFieldError("id")}
	}
	if !util.IsULID(id) {
		return domain.ValidationErrors{domain.NewInvalidFormatError("id", id)}
	}
	return nil
}

func translate(fe validator.FieldError) domain.ValidationError {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return domain.NewMissingFieldError(field)
	case "min", "max":
		switch fe.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			bound := "at least"
			if fe.Tag() == "max" {
				bound = "at most"
			}
			return domain.ValidationError{
				Code:    domain.CodeOutOfRange,
				Field:   field,
				Message: fmt.Sprintf("%s must be %s %s", field, bound, fe.Param()),
				Value:   fe.Value(),
			}
		}
		// strings and slices: a length limit
		return domain.ValidationError{
			Code:    domain.CodeInvalidFormat,
			Field:   field,
			Message: fmt.Sprintf("%s length must be %s %s", field, map[string]string{"min": "at least", "max": "at most"}[fe.Tag()], fe.Param()),
		}
	case "oneof":
		return domain.NewInvalidFormatError(field, fe.Value())
	default:
		e := domain.NewValidationError(field, fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
		e.Value = fe.Value()
		return e
	}
}
