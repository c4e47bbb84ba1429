package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Guard is a SETNX-based claim used by the notifier's sweeps to stop
// multiple workers from dispatching the same notification. A claim
// expires after its ttl, so a worker that dies mid-item only delays the
// retry, never loses it.
type Guard struct {
	client redis.UniversalClient
}

// NewGuard wraps a connected client.
func NewGuard(client redis.UniversalClient) *Guard {
	return &Guard{client: client}
}

// Acquire claims the key for ttl and reports whether this caller won.
func (g *Guard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return g.client.SetNX(ctx, key, "1", ttl).Result()
}

// Release drops a claim early, letting the next sweep reprocess the
// item immediately. It is safe to call for keys that already expired.
func (g *Guard) Release(ctx context.Context, key string) error {
	return g.client.Del(ctx, key).Err()
}
