// internal/pkg/apperr/errors.go
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors shared across domain services.
var (
	ErrAuthRequired = errors.New("authentication required")
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("already exists")
)

// ValidationError reports the first user-correctable field failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidation creates a field-level validation error.
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// BackendError wraps a store/transport failure. The underlying message is
// passed through verbatim to the caller.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// NewBackend wraps err as a backend failure for operation op.
func NewBackend(op string, err error) *BackendError {
	return &BackendError{Op: op, Err: err}
}

// HTTPStatus maps a taxonomy error to its HTTP status code.
func HTTPStatus(err error) int {
	var ve *ValidationError
	var be *BackendError

	switch {
	case errors.Is(err, ErrAuthRequired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity
	case errors.As(err, &be):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
