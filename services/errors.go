package services

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

// Error is a failure the HTTP layer can report verbatim.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func ErrValidation(format string, args ...interface{}) *Error {
	return &Error{Status: http.StatusBadRequest, Code: "VALIDATION_ERROR", Message: fmt.Sprintf(format, args...)}
}

func ErrUnauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: "UNAUTHORIZED", Message: message}
}

func ErrForbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Code: "FORBIDDEN", Message: message}
}

func ErrNotFound(entity string) *Error {
	return &Error{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: entity + " not found"}
}

func ErrConflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Code: "CONFLICT", Message: message}
}

func ErrUnavailable(message string) *Error {
	return &Error{Status: http.StatusServiceUnavailable, Code: "SERVICE_UNAVAILABLE", Message: message}
}

// AsError extracts a typed service error, if any.
func AsError(err error) (*Error, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// notFoundOr maps a missing row onto a typed 404 and passes anything else through.
func notFoundOr(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound(entity)
	}
	return err
}
