package preference

import "errors"

var (
	// ErrMissingUserID is returned when an operation lacks a user ID.
	ErrMissingUserID = errors.New("user ID is required")
)
