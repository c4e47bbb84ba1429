package webhook

import "errors"

var (
	// ErrInvalidConfig is returned when channel settings are incomplete.
	ErrInvalidConfig = errors.New("invalid webhook channel config")

	// ErrInvalidEndpoint is returned for a malformed endpoint URL.
	ErrInvalidEndpoint = errors.New("invalid webhook endpoint")

	// ErrNoEndpoints is returned when the recipient has no endpoints.
	ErrNoEndpoints = errors.New("recipient has no webhook endpoints")

	// ErrInvalidSignature is returned when signature verification fails.
	ErrInvalidSignature = errors.New("invalid webhook signature")
)
