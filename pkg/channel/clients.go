package channel

import (
	"context"
	"fmt"
	"sync"
)

// Clients caches provider clients keyed by channel name and resolves
// which channel a delivery should use. All adapters embed one; T is the
// adapter's provider client type.
type Clients[T any] struct {
	store Store
	typ   Type
	build func(ctx context.Context, cfg Config) (T, error)

	mu      sync.Mutex
	clients map[string]T
}

// NewClients creates a client cache for one channel type. The build
// function constructs a provider client from a channel config.
func NewClients[T any](store Store, typ Type, build func(ctx context.Context, cfg Config) (T, error)) *Clients[T] {
	return &Clients[T]{
		store:   store,
		typ:     typ,
		build:   build,
		clients: make(map[string]T),
	}
}

// Init builds and caches the client for a channel config. On build
// failure the channel record is marked errored with the message, and
// the error is returned.
func (c *Clients[T]) Init(ctx context.Context, cfg Config) error {
	if cfg.Type != c.typ {
		return fmt.Errorf("%w: channel %q is %s, adapter handles %s", ErrTypeMismatch, cfg.Name, cfg.Type, c.typ)
	}

	c.mu.Lock()
	_, ok := c.clients[cfg.Name]
	c.mu.Unlock()
	if ok {
		return nil
	}

	client, err := c.build(ctx, cfg)
	if err != nil {
		// Best effort; the build error is the one worth surfacing.
		_ = c.store.SetStatus(ctx, cfg.Name, StatusError, err.Error())
		return err
	}

	c.mu.Lock()
	c.clients[cfg.Name] = client
	c.mu.Unlock()
	return nil
}

// Resolve picks the channel for a delivery and returns its cached
// client, initializing lazily. A non-empty name pins that channel;
// otherwise every active channel of the type is initialized and the
// default-tagged one is chosen, falling back to the first active
// channel that initialized cleanly.
func (c *Clients[T]) Resolve(ctx context.Context, name string) (T, *Config, error) {
	var zero T

	if name != "" {
		cfg, err := c.store.Get(ctx, name)
		if err != nil {
			return zero, nil, err
		}
		if err := c.Init(ctx, *cfg); err != nil {
			return zero, nil, err
		}
		c.mu.Lock()
		client := c.clients[cfg.Name]
		c.mu.Unlock()
		return client, cfg, nil
	}

	active, err := c.store.List(ctx, ListOptions{Type: c.typ, Status: StatusActive})
	if err != nil {
		return zero, nil, err
	}
	if len(active) == 0 {
		return zero, nil, ErrNoActiveChannel
	}

	var chosen *Config
	var lastErr error
	for i := range active {
		if err := c.Init(ctx, active[i]); err != nil {
			lastErr = err
			continue
		}
		if active[i].IsDefault() {
			chosen = &active[i]
			break
		}
		if chosen == nil {
			chosen = &active[i]
		}
	}
	if chosen == nil {
		return zero, nil, fmt.Errorf("%w: %w", ErrNoActiveChannel, lastErr)
	}

	c.mu.Lock()
	client := c.clients[chosen.Name]
	c.mu.Unlock()
	return client, chosen, nil
}

// Forget drops a cached client so the next use rebuilds it, e.g. after
// a channel config update.
func (c *Clients[T]) Forget(name string) {
	c.mu.Lock()
	delete(c.clients, name)
	c.mu.Unlock()
}
