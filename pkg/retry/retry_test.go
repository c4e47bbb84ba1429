package retry_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrovia/notifykit/pkg/retry"
)

func TestPolicy_SuccessFirstAttempt(t *testing.T) {
	t.Parallel()

	calls := 0
	policy := retry.NewPolicy(3, 10*time.Millisecond, 2)

	err := policy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestPolicy_RetriesTransientThenSucceeds(t *testing.T) {
	t.Parallel()

	calls := 0
	policy := retry.NewPolicy(3, 20*time.Millisecond, 2)

	start := time.Now()
	err := policy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return &retry.StatusError{StatusCode: 503}
		}
		return nil
	})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	// Two backoff sleeps: 20ms * 2^0 + 20ms * 2^1 = 60ms.
	assert.GreaterOrEqual(t, elapsed, 60*time.Millisecond)
	assert.Less(t, elapsed, 200*time.Millisecond)
}

func TestPolicy_PermanentErrorStopsImmediately(t *testing.T) {
	t.Parallel()

	calls := 0
	policy := retry.NewPolicy(5, time.Millisecond, 2)

	err := policy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return &retry.StatusError{StatusCode: 404, Body: "not found"}
	})

	require.ErrorIs(t, err, retry.ErrPermanent)
	assert.Equal(t, 1, calls)
}

func TestPolicy_Exhaustion(t *testing.T) {
	t.Parallel()

	calls := 0
	policy := retry.NewPolicy(3, time.Millisecond, 1)

	err := policy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return &retry.StatusError{StatusCode: 500, Body: "boom"}
	})

	require.ErrorIs(t, err, retry.ErrExhausted)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "boom")
}

func TestPolicy_ZeroValueSingleAttempt(t *testing.T) {
	t.Parallel()

	calls := 0
	var policy retry.Policy

	err := policy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return &retry.StatusError{StatusCode: 503}
	})

	require.ErrorIs(t, err, retry.ErrExhausted)
	assert.Equal(t, 1, calls)
}

func TestPolicy_ContextCanceledDuringBackoff(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	policy := retry.NewPolicy(3, time.Hour, 2)

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := policy.Do(ctx, func(ctx context.Context) error {
		return &retry.StatusError{StatusCode: 502}
	})

	require.ErrorIs(t, err, context.Canceled)
}

type fakeNetError struct{}

func (fakeNetError) Error() string   { return "connection refused" }
func (fakeNetError) Timeout() bool   { return false }
func (fakeNetError) Temporary() bool { return true }

func TestRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"status 500", &retry.StatusError{StatusCode: 500}, true},
		{"status 503", &retry.StatusError{StatusCode: 503}, true},
		{"status 429", &retry.StatusError{StatusCode: 429}, true},
		{"status 408", &retry.StatusError{StatusCode: 408}, true},
		{"status 400", &retry.StatusError{StatusCode: 400}, false},
		{"status 401", &retry.StatusError{StatusCode: 401}, false},
		{"status 404", &retry.StatusError{StatusCode: 404}, false},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"net error", fakeNetError{}, true},
		{"wrapped net error", errors.Join(errors.New("dial"), fakeNetError{}), true},
		{"marked temporary", errors.Join(retry.ErrTemporary, errors.New("queue full")), true},
		{"plain error", errors.New("invalid payload"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, retry.Retryable(tt.err))
		})
	}

	var _ net.Error = fakeNetError{}
}

func TestExponentialBackoff_NextInterval(t *testing.T) {
	t.Parallel()

	b := retry.ExponentialBackoff{InitialInterval: time.Second, Multiplier: 2}

	assert.Equal(t, time.Duration(0), b.NextInterval(0))
	assert.Equal(t, time.Second, b.NextInterval(1))
	assert.Equal(t, 2*time.Second, b.NextInterval(2))
	assert.Equal(t, 4*time.Second, b.NextInterval(3))
	// Capped at the default 30s maximum.
	assert.Equal(t, 30*time.Second, b.NextInterval(10))
}

func TestFixedBackoff_NextInterval(t *testing.T) {
	t.Parallel()

	b := retry.FixedBackoff{Interval: 5 * time.Second}

	assert.Equal(t, time.Duration(0), b.NextInterval(0))
	assert.Equal(t, 5*time.Second, b.NextInterval(1))
	assert.Equal(t, 5*time.Second, b.NextInterval(7))
}
