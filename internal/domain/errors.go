package domain

import "errors"

// Sentinel errors shared across services. Controllers map these to HTTP codes.
var (
	// ErrNotFound is returned when a referenced user, category, event, or
	// request does not exist or is not visible to the caller.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a business rule would be violated
	// (unpublished event, participant limit reached, duplicate request,
	// illegal state transition).
	ErrConflict = errors.New("conflict")

	// ErrValidation is returned for structurally invalid input, e.g. an
	// event date that is too soon.
	ErrValidation = errors.New("invalid input")

	// ErrForbidden is returned when the caller is authenticated but not
	// allowed to act on the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrDuplicateEmail is returned on signup with an email already in use.
	ErrDuplicateEmail = errors.New("email already in use")
)
