package notifier

import (
	"context"
	"time"
)

// Guard deduplicates sweep work across processes. Acquire claims a key
// for the given ttl and reports whether this caller won the claim; a
// false result means another worker already owns the item. The redis
// package provides a SETNX-backed implementation.
type Guard interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}
