package async_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrovia/notifykit/pkg/async"
)

var ctx = context.Background()

func TestGoAndAwait(t *testing.T) {
	t.Parallel()

	f := async.Go(ctx, 21, func(ctx context.Context, n int) (int, error) {
		return n * 2, nil
	})

	result, err := f.Await()
	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.True(t, f.Done())
}

func TestGoPropagatesError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	f := async.Go(ctx, struct{}{}, func(ctx context.Context, _ struct{}) (string, error) {
		return "", boom
	})

	_, err := f.Await()
	require.ErrorIs(t, err, boom)
}

func TestGoCanceledContext(t *testing.T) {
	t.Parallel()

	canceled, cancel := context.WithCancel(ctx)
	cancel()

	f := async.Go(canceled, struct{}{}, func(ctx context.Context, _ struct{}) (int, error) {
		t.Error("fn must not run with a pre-canceled context")
		return 0, nil
	})

	_, err := f.Await()
	require.ErrorIs(t, err, context.Canceled)
}

func TestAwaitWithTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	f := async.Go(ctx, struct{}{}, func(ctx context.Context, _ struct{}) (int, error) {
		<-release
		return 1, nil
	})

	_, err := f.AwaitWithTimeout(10 * time.Millisecond)
	require.ErrorIs(t, err, async.ErrTimeout)

	close(release)
	result, err := f.Await()
	require.NoError(t, err)
	assert.Equal(t, 1, result)
}

func TestWaitAllKeepsOrderAndAllResults(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	futures := make([]*async.Future[int], 3)
	for i := range futures {
		futures[i] = async.Go(ctx, i, func(ctx context.Context, n int) (int, error) {
			if n == 1 {
				return -1, boom
			}
			return n * 10, nil
		})
	}

	results, err := async.WaitAll(futures...)
	require.ErrorIs(t, err, boom)

	// Every slot is populated even though one future failed.
	assert.Equal(t, []int{0, -1, 20}, results)
}
