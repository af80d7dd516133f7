package domain

import "errors"

// Error taxonomy shared by every layer. Package level errors wrap one of these,
// so callers may match either the precise error or its category.
var (
	// ErrConflict the requested slot overlaps an active booking, or a uniqueness rule was hit
	ErrConflict = errors.New("conflict")

	// ErrInvalidTransition the booking status does not admit the requested operation
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrAuthorization the actor may not perform the operation on this object
	ErrAuthorization = errors.New("not authorized")

	// ErrNotFound the referenced object does not exist
	ErrNotFound = errors.New("not found")

	// ErrUnavailable storage or a collaborator failed; the caller may retry
	ErrUnavailable = errors.New("temporarily unavailable")

	// ErrInvalidInput malformed or out of range input
	ErrInvalidInput = errors.New("invalid input")
)
