// Package validators adapts go-playground/validator to Echo's Validator
// interface, turning tag failures into the VALIDATION error envelope.
package validators

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/socialape/screams-backend/internal/apierror"
)

// Validator validates request structs against their validate tags.
type Validator struct {
	cli *validator.Validate
}

// NewValidator initializes and returns a new Validator
func NewValidator() *Validator {
	return &Validator{
		cli: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Validate implements echo.Validator. Failures come back as a single
// VALIDATION APIError carrying one message per offending field.
func (v *Validator) Validate(i interface{}) error {
	err := v.cli.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierror.Validation([]string{err.Error()})
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, message(fe))
	}
	return apierror.Validation(msgs)
}

func message(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s must not be empty", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "eqfield":
		return "passwords must match"
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
