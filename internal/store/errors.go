package store

import "errors"

// Error taxonomy shared by both stores. Callers match with errors.Is and
// decide retry behavior; nothing in this package retries on its own.
var (
	// ErrValidation marks malformed input the caller can fix and resend.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a referenced entity that is absent or not owned
	// by the caller. Ownership misses are deliberately indistinguishable
	// from absence so ids cannot be probed across admin scopes.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a violated state precondition, such as deleting
	// a location an active session still references.
	ErrConflict = errors.New("conflict")

	// ErrInvalidState marks an operation that is not valid for the
	// entity's current state, such as marking attendance on an ended
	// session.
	ErrInvalidState = errors.New("invalid state")

	// ErrForbidden marks an ownership scope violation.
	ErrForbidden = errors.New("forbidden")
)
