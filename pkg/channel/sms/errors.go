package sms

import "errors"

var (
	// ErrUnknownProvider is returned for an unrecognized provider name.
	ErrUnknownProvider = errors.New("unknown sms provider")

	// ErrInvalidConfig is returned when provider settings are incomplete.
	ErrInvalidConfig = errors.New("invalid sms channel config")

	// ErrMissingPhoneNumber is returned when the recipient has no phone number.
	ErrMissingPhoneNumber = errors.New("recipient phone number is missing")

	// ErrSendFailed wraps provider delivery failures.
	ErrSendFailed = errors.New("failed to send sms")
)
