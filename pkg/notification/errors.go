package notification

import "errors"

var (
	// ErrNotFound is returned when a notification does not exist.
	ErrNotFound = errors.New("notification not found")

	// ErrInvalidTransition is returned when a status change violates the
	// lifecycle state machine.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrMissingID is returned when persisting a notification without an id.
	ErrMissingID = errors.New("notification id is required")

	// ErrMissingUserID is returned when persisting a notification without a recipient.
	ErrMissingUserID = errors.New("notification user id is required")
)
