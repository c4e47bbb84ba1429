package notifier

import "errors"

var (
	// ErrMissingRecipient is returned when a send request has no user id.
	ErrMissingRecipient = errors.New("recipient user id is required")

	// ErrMissingType is returned when a send request has no notification type.
	ErrMissingType = errors.New("notification type is required")

	// ErrMissingCategory is returned when a send request has no category.
	ErrMissingCategory = errors.New("notification category is required")

	// ErrMissingContent is returned when a send request names no template
	// and supplies no literal title and message either.
	ErrMissingContent = errors.New("title and message are required when no template is given")

	// ErrInvalidChannel is returned for an unknown delivery channel.
	ErrInvalidChannel = errors.New("invalid notification channel")

	// ErrInvalidPriority is returned for an unknown priority level.
	ErrInvalidPriority = errors.New("invalid notification priority")
)
