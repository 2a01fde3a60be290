package entities

import "errors"

// Link lifecycle errors. Stores and services wrap these with context; callers
// test for them with errors.Is.
var (
	// ErrValidation marks malformed or missing identifiers on a request.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks an operation on a link that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a duplicate or contradictory link rejected by the store.
	ErrConflict = errors.New("conflict")
	// ErrTransport marks a store that could not be reached or failed internally.
	ErrTransport = errors.New("transport error")
	// ErrForbidden marks an actor who is neither a party nor an administrator.
	ErrForbidden = errors.New("forbidden")
)
