// Package utils provides shared helpers for the application layer.
package utils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "loom-backend/pkg/errors"
)

var validate = validator.New()

// ValidateStruct validates a struct using its `validate` tags and folds the
// field errors into a single validation AppError.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return pkgerrors.NewValidationError(err.Error())
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		messages = append(messages, describeFieldError(fieldErr))
	}
	return pkgerrors.NewValidationError(strings.Join(messages, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "uuid":
		return fmt.Sprintf("%s must be a valid UUID", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
