// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrInvalidInput = errors.New("invalid input")
	ErrStorage      = errors.New("storage backend failure")
)

type AppError struct {
	Status  int               `json:"-"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *AppError) Error() string {
	return e.Message
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func NotFoundError(resource string) *AppError {
	return &AppError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func BadRequestError(message string) *AppError {
	return &AppError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
}

func ValidationError(fields map[string]string) *AppError {
	return &AppError{
		Status:  http.StatusUnprocessableEntity,
		Code:    "VALIDATION_FAILED",
		Message: "one or more fields failed validation",
		Fields:  fields,
	}
}

func StorageError() *AppError {
	return &AppError{
		Status:  http.StatusBadGateway,
		Code:    "STORAGE_FAILURE",
		Message: "file storage backend is unavailable",
	}
}

func InternalError() *AppError {
	return &AppError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: "an unexpected error occurred",
	}
}

// FieldErrors flattens validator.ValidationErrors into a field -> message map
// keyed by the struct field's json name (lowercased field name as fallback).
func FieldErrors(err error) map[string]string {
	fields := make(map[string]string)

	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		fields["_"] = err.Error()
		return fields
	}

	for _, fe := range vErrs {
		fields[strings.ToLower(fe.Field())] = validationMessage(fe)
	}

	return fields
}

func FormatValidationError(err error) string {
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return "invalid request"
	}

	parts := make([]string, 0, len(vErrs))
	for _, fe := range vErrs {
		parts = append(parts, fmt.Sprintf(
			"%s: %s",
			strings.ToLower(fe.Field()),
			validationMessage(fe),
		))
	}

	return strings.Join(parts, "; ")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
