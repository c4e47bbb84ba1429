package async

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is returned by AwaitWithTimeout when the future does not
// complete in time.
var ErrTimeout = errors.New("async: timed out waiting for future")

// Future holds the eventual result of a function started with Go.
type Future[U any] struct {
	result U
	err    error
	done   chan struct{}
}

// Await blocks until the function completes and returns its result.
func (f *Future[U]) Await() (U, error) {
	<-f.done
	return f.result, f.err
}

// AwaitWithTimeout blocks until the function completes or the timeout
// elapses, in which case it returns ErrTimeout. The function itself
// keeps running; only the wait is abandoned.
func (f *Future[U]) AwaitWithTimeout(timeout time.Duration) (U, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-time.After(timeout):
		var zero U
		return zero, ErrTimeout
	}
}

// Done reports completion without blocking.
func (f *Future[U]) Done() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Go runs fn on its own goroutine and returns a Future for its result.
// A context canceled before fn starts short-circuits to ctx.Err()
// without invoking fn.
func Go[T, U any](ctx context.Context, param T, fn func(context.Context, T) (U, error)) *Future[U] {
	f := &Future[U]{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		select {
		case <-ctx.Done():
			f.err = ctx.Err()
			return
		default:
		}

		f.result, f.err = fn(ctx, param)
	}()

	return f
}

// WaitAll awaits every future and returns their results in order. The
// slice is always fully populated; the returned error is the first
// non-nil one encountered, so callers that record errors per item can
// ignore it.
func WaitAll[U any](futures ...*Future[U]) ([]U, error) {
	results := make([]U, len(futures))
	var firstErr error

	for i, future := range futures {
		result, err := future.Await()
		results[i] = result
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return results, firstErr
}
