// Package retry provides a bounded retry policy with exponential backoff
// and transient-error classification for outbound delivery calls.
//
// The webhook channel is the main consumer: each endpoint delivery runs
// through a Policy configured from the channel record. Network errors,
// timeouts, 5xx responses, and HTTP 429 are retried; other failures are
// terminal and surface immediately.
//
//	policy := retry.NewPolicy(3, time.Second, 2)
//	err := policy.Do(ctx, func(ctx context.Context) error {
//	    return deliver(ctx, endpoint, payload)
//	})
package retry
