package retry

import "errors"

var (
	// ErrExhausted is returned when the attempt budget runs out. It wraps
	// the last attempt's error.
	ErrExhausted = errors.New("retry attempts exhausted")

	// ErrPermanent is returned when an attempt fails with an error that
	// retrying cannot fix. It wraps the underlying error.
	ErrPermanent = errors.New("permanent failure")

	// ErrTemporary marks an error as retryable when wrapped. Callers that
	// cannot express retryability through status codes or net errors can
	// wrap their error with this sentinel.
	ErrTemporary = errors.New("temporary failure")
)
