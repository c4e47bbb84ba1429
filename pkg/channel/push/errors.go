package push

import "errors"

var (
	// ErrUnknownProvider is returned for an unrecognized provider name.
	ErrUnknownProvider = errors.New("unknown push provider")

	// ErrInvalidConfig is returned when provider settings are incomplete.
	ErrInvalidConfig = errors.New("invalid push channel config")

	// ErrNoTokens is returned when the recipient has no registered devices.
	ErrNoTokens = errors.New("recipient has no push tokens")

	// ErrUnsupportedPlatform marks tokens the provider cannot reach.
	ErrUnsupportedPlatform = errors.New("platform not supported by provider")

	// ErrInvalidSubscription is returned for a malformed web push
	// subscription token.
	ErrInvalidSubscription = errors.New("invalid web push subscription")
)
