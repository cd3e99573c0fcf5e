package errs

import "errors"

// Common sentinel errors for cross-layer signaling.
var (
	// ErrValidation marks malformed or out-of-range input, rejected before any mutation.
	ErrValidation = errors.New("validation_error")
	// ErrNotFound marks a missing record or a record owned by another user.
	ErrNotFound = errors.New("not_found")
	// ErrConflict marks duplicate names, guarded deletes, and full edits of installment plans.
	ErrConflict = errors.New("conflict")
	// ErrState marks an operation invalid for the record's current state
	// (e.g. installment index out of range).
	ErrState = errors.New("state_error")
	// ErrForbidden marks access to another user's record where the distinction matters.
	ErrForbidden = errors.New("forbidden")
)
