package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	ErrRequired  = "is required"
	ErrNotBlank  = "must not be blank"
	ErrMinLength = "must be at least %s"
	ErrMaxLength = "must be at most %s characters long"
	ErrOneOf     = "must be one of: %s"
	ErrInvalid   = "is invalid"
)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterValidation("notblank", validateNotBlank)

	return validator
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return ErrRequired
	case "notblank":
		return ErrNotBlank
	case "min":
		return fmt.Sprintf(ErrMinLength, err.Param())
	case "max":
		return fmt.Sprintf(ErrMaxLength, err.Param())
	case "oneof":
		return fmt.Sprintf(ErrOneOf, err.Param())
	default:
		return ErrInvalid
	}
}
