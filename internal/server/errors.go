package server

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationKind names the reason a request was rejected as malformed.
type ValidationKind string

const (
	EmptyName    ValidationKind = "empty_name"
	InvalidName  ValidationKind = "invalid_name"
	MissingField ValidationKind = "missing_field"
)

// ValidationError is returned for client input that can never succeed as sent.
type ValidationError struct {
	Kind ValidationKind
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case EmptyName:
		return "empty filename"
	case InvalidName:
		return "invalid filename"
	case MissingField:
		return "missing 'file' field"
	default:
		return "invalid request"
	}
}

// Is makes errors.Is match any ValidationError of the same kind.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Kind == e.Kind
}

var (
	ErrEmptyName    = &ValidationError{Kind: EmptyName}
	ErrInvalidName  = &ValidationError{Kind: InvalidName}
	ErrMissingField = &ValidationError{Kind: MissingField}

	ErrUnauthorized    = errors.New("unauthorized")
	ErrPayloadTooLarge = errors.New("file too large")
	ErrNotFound        = errors.New("file not found")
)

// StorageError wraps a filesystem failure. Its message carries paths and
// must only ever be logged, never sent to clients.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// statusFor maps an error to the HTTP status reported to the client.
func statusFor(err error) int {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
