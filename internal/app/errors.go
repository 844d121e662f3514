package service

import "errors"

// Service-level sentinel errors returned to the transport layer.
var (
	// ErrAccessDenied is returned when the acting user lacks the role an
	// operation requires (unassigned judge, non-organizer, unverified
	// reviewer).
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidRating is returned when a review rating is outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrNotStarted is returned when an operation is invoked before Start.
	ErrNotStarted = errors.New("service not started")
)
