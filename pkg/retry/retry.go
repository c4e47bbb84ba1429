package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// Policy wraps an outbound call with bounded retries. A zero Policy
// performs a single attempt with no delay, matching channels that have
// retry disabled.
type Policy struct {
	// MaxAttempts is the total number of attempts including the first.
	// Values below 1 are treated as 1.
	MaxAttempts int

	// Backoff computes the delay before each retry. Nil defaults to
	// exponential backoff starting at one second.
	Backoff BackoffStrategy
}

// NewPolicy builds a Policy with exponential backoff parameters as they
// appear in channel configuration: delay before retry n is
// initialDelay * factor^(n-1).
func NewPolicy(maxAttempts int, initialDelay time.Duration, factor float64) Policy {
	return Policy{
		MaxAttempts: maxAttempts,
		Backoff: ExponentialBackoff{
			InitialInterval: initialDelay,
			Multiplier:      factor,
		},
	}
}

// Do invokes fn until it succeeds, a non-retryable error occurs, the
// attempt budget is exhausted, or ctx is canceled. Sleeping between
// attempts respects context cancellation.
func (p Policy) Do(ctx context.Context, fn func(context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	backoff := p.Backoff
	if backoff == nil {
		backoff = ExponentialBackoff{}
	}

	var lastErr error
	for attempt := range attempts {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff.NextInterval(attempt)):
			}
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !Retryable(err) {
			return fmt.Errorf("%w: %w", ErrPermanent, err)
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempts, lastErr)
}

// StatusError carries an HTTP response status for retryability
// classification. The body excerpt is kept for error reporting only.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// RetryableStatus reports whether an HTTP status code represents a
// transient failure. 5xx responses and rate limiting are retryable;
// other 4xx codes indicate client errors that will not resolve on retry.
func RetryableStatus(code int) bool {
	if code >= 500 {
		return true
	}
	switch code {
	case 408, 425, 429:
		return true
	}
	return false
}

// Retryable classifies an error as transient. Network errors, timeouts,
// retryable HTTP statuses, and errors explicitly marked with
// ErrTemporary qualify; everything else is terminal.
func Retryable(err error) bool {
	if err == nil {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return RetryableStatus(statusErr.StatusCode)
	}

	// Timeouts are treated as retryable network failures.
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return errors.Is(err, ErrTemporary)
}
