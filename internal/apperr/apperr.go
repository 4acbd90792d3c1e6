// Package apperr carries the error taxonomy shared by every feature package.
// Handlers and repos return these; the fiber ErrorHandler in cmd/api maps
// them to HTTP statuses exactly once.
package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

var (
	// ErrValidation marks malformed or missing input, rejected before any mutation.
	ErrValidation = errors.New("validation error")
	// ErrPermission marks an entity that exists but is not owned by the caller.
	ErrPermission = errors.New("permission denied")
	// ErrConflict marks a uniqueness violation.
	ErrConflict = errors.New("conflict")
	// ErrNotFound marks a referenced entity that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrIntegrity marks a failed atomic unit; callers see an opaque failure.
	ErrIntegrity = errors.New("integrity error")
)

type taggedError struct {
	kind error
	msg  string
}

func (e *taggedError) Error() string { return e.msg }
func (e *taggedError) Unwrap() error { return e.kind }

func Validation(format string, args ...any) error {
	return &taggedError{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

func Permission(format string, args ...any) error {
	return &taggedError{kind: ErrPermission, msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &taggedError{kind: ErrConflict, msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &taggedError{kind: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}

func Integrity(format string, args ...any) error {
	return &taggedError{kind: ErrIntegrity, msg: fmt.Sprintf(format, args...)}
}

// Status returns the HTTP status and client-facing message for err.
// Integrity and unclassified errors never leak internals.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, ErrValidation):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, ErrPermission):
		return fiber.StatusForbidden, err.Error()
	case errors.Is(err, ErrConflict):
		return fiber.StatusConflict, err.Error()
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound, err.Error()
	default:
		return fiber.StatusInternalServerError, "internal server error"
	}
}
