package repository

import "github.com/clearrights/repository/errs"

// Sentinel errors re-exported for callers that only import the root
// package. Dispatch with errors.Is.
var (
	// ErrValidation is returned for malformed input, unsatisfiable
	// policies and bad identifiers.
	ErrValidation = errs.ErrValidation

	// ErrPermission is returned when an action is not allowed by policy
	// semantics.
	ErrPermission = errs.ErrPermission

	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errs.ErrNotFound

	// ErrRepository is returned on triple-store failures.
	ErrRepository = errs.ErrRepository
)
