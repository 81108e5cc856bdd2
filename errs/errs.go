// Package errs defines the error taxonomy shared by every repository
// subsystem. Callers dispatch with errors.Is; the HTTP layer maps the
// sentinels onto status codes (validation → 400, permission → 403,
// not found → 404, everything else → 500).
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned for malformed input, unsatisfiable
	// policies, bad identifiers, unrecognized metadata keys and
	// cardinality violations. Never retried.
	ErrValidation = errors.New("repository: validation failed")

	// ErrPermission is returned when an action is semantically valid but
	// not allowed by policy semantics. Never retried.
	ErrPermission = errors.New("repository: not permitted")

	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("repository: not found")

	// ErrRepository is returned on triple-store transport or response
	// parse failures. Propagated to the caller, never silently swallowed.
	ErrRepository = errors.New("repository: store failure")
)

// Validationf wraps ErrValidation with a formatted message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

// Permissionf wraps ErrPermission with a formatted message.
func Permissionf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrPermission}, args...)...)
}

// NotFoundf wraps ErrNotFound with a formatted message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrNotFound}, args...)...)
}

// Repositoryf wraps ErrRepository with a formatted message.
func Repositoryf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrRepository}, args...)...)
}
