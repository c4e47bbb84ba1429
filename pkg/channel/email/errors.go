package email

import "errors"

var (
	// ErrUnknownProvider is returned for an unrecognized provider name.
	ErrUnknownProvider = errors.New("unknown email provider")

	// ErrInvalidConfig is returned when provider settings are incomplete.
	ErrInvalidConfig = errors.New("invalid email channel config")

	// ErrMissingAddress is returned when the recipient has no email address.
	ErrMissingAddress = errors.New("recipient email address is missing")

	// ErrInvalidAddress is returned for a malformed recipient address.
	ErrInvalidAddress = errors.New("invalid recipient email address")

	// ErrSendFailed wraps provider delivery failures.
	ErrSendFailed = errors.New("failed to send email")
)
