package channel

import "errors"

var (
	// ErrNotFound is returned when a channel does not exist.
	ErrNotFound = errors.New("channel not found")

	// ErrAlreadyExists is returned when creating a channel whose name is taken.
	ErrAlreadyExists = errors.New("channel already exists")

	// ErrMissingName is returned when a channel config lacks a name.
	ErrMissingName = errors.New("channel name is required")

	// ErrInvalidType is returned for an unknown channel type.
	ErrInvalidType = errors.New("invalid channel type")

	// ErrInvalidStatus is returned for an unknown channel status.
	ErrInvalidStatus = errors.New("invalid channel status")

	// ErrNoAdapter is returned when no adapter is registered for a type.
	ErrNoAdapter = errors.New("no adapter registered for channel type")

	// ErrNoActiveChannel is returned when no active channel of the
	// required type exists.
	ErrNoActiveChannel = errors.New("no active channel available")

	// ErrTypeMismatch is returned when a named channel belongs to a
	// different adapter type.
	ErrTypeMismatch = errors.New("channel type mismatch")
)
