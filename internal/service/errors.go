package service

import "errors"

// Error kinds. Services wrap these with fmt.Errorf("...: %w", ErrX) so the
// handler layer can map them to HTTP status codes with errors.Is while the
// message still carries the human-readable detail.
var (
	// ErrValidation is returned for malformed or out-of-range input.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned for duplicate unique fields, scheduling
	// overlaps, and invalid lifecycle transitions.
	ErrConflict = errors.New("conflict")

	// ErrUnauthorized is returned for failed credential checks.
	ErrUnauthorized = errors.New("unauthorized")
)
