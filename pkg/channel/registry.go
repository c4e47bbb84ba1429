package channel

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Registry maps channel types to their adapters and exposes the
// administrative surface for channel configs: create, update, delete,
// test, and default selection.
type Registry struct {
	store    Store
	adapters map[Type]Adapter
	log      *slog.Logger
	now      func() time.Time
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger used by registry operations.
func WithLogger(log *slog.Logger) RegistryOption {
	return RegistryOption(func(r *Registry) {
		r.log = log
	})
}

// WithClock overrides the registry's time source.
func WithClock(now func() time.Time) RegistryOption {
	return RegistryOption(func(r *Registry) {
		r.now = now
	})
}

// NewRegistry creates a Registry backed by the given channel store.
func NewRegistry(store Store, opts ...RegistryOption) *Registry {
	r := &Registry{
		store:    store,
		adapters: make(map[Type]Adapter),
		log:      slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register installs an adapter for its channel type, replacing any
// previous adapter for that type.
func (r *Registry) Register(a Adapter) {
	r.adapters[a.Type()] = a
}

// Adapter returns the adapter registered for a type.
func (r *Registry) Adapter(t Type) (Adapter, error) {
	a, ok := r.adapters[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoAdapter, t)
	}
	return a, nil
}

// Store exposes the underlying channel store.
func (r *Registry) Store() Store {
	return r.store
}

// Dispatch routes a delivery to the adapter for the given type. A
// missing adapter becomes a failed outcome rather than an error, so
// callers always get a terminal result to record.
func (r *Registry) Dispatch(ctx context.Context, t Type, d Delivery) DeliveryOutcome {
	a, err := r.Adapter(t)
	if err != nil {
		return Failure(err)
	}
	return a.Send(ctx, d)
}

// CreateChannel validates and stores a new channel config. New channels
// start in testing status until TestChannel promotes them.
func (r *Registry) CreateChannel(ctx context.Context, cfg Config) error {
	if cfg.Name == "" {
		return ErrMissingName
	}
	if !cfg.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, cfg.Type)
	}
	if cfg.Status == "" {
		cfg.Status = StatusTesting
	}
	return r.store.Create(ctx, cfg)
}

// UpdateChannel replaces a channel config and drops any cached adapter
// client so the next delivery rebuilds it.
func (r *Registry) UpdateChannel(ctx context.Context, cfg Config) error {
	if err := r.store.Update(ctx, cfg); err != nil {
		return err
	}
	if f, ok := r.adapters[cfg.Type].(interface{ Forget(string) }); ok {
		f.Forget(cfg.Name)
	}
	return nil
}

// DeleteChannel removes a channel config.
func (r *Registry) DeleteChannel(ctx context.Context, name string) error {
	cfg, err := r.store.Get(ctx, name)
	if err != nil {
		return err
	}
	if err := r.store.Delete(ctx, name); err != nil {
		return err
	}
	if f, ok := r.adapters[cfg.Type].(interface{ Forget(string) }); ok {
		f.Forget(name)
	}
	return nil
}

// TestChannel initializes the channel's provider client and transitions
// the record's status on the result: active on success, error with the
// message on failure. The last-tested time is stamped either way.
func (r *Registry) TestChannel(ctx context.Context, name string) error {
	cfg, err := r.store.Get(ctx, name)
	if err != nil {
		return err
	}

	a, err := r.Adapter(cfg.Type)
	if err != nil {
		return err
	}

	testErr := a.Init(ctx, *cfg)
	if markErr := r.store.MarkTested(ctx, name, r.now()); markErr != nil {
		r.log.WarnContext(ctx, "failed to stamp channel test time",
			slog.String("channel", name), slog.Any("error", markErr))
	}

	if testErr != nil {
		// Init already marked the record errored with the message.
		return testErr
	}
	return r.store.SetStatus(ctx, name, StatusActive, "")
}

// SetDefaultChannel makes the named channel the default for its type.
// The default tag is cleared from all same-type channels first, so at
// most one default exists per type.
func (r *Registry) SetDefaultChannel(ctx context.Context, name string) error {
	return r.store.SetDefault(ctx, name)
}

// RecordAttempt folds a delivery outcome into the owning channel's
// stats. Recording is an explicit step decoupled from the transport, so
// a stats failure never masks a delivery result; it is logged and the
// outcome is returned unchanged.
func (r *Registry) RecordAttempt(ctx context.Context, name string, outcome DeliveryOutcome) DeliveryOutcome {
	if name == "" {
		return outcome
	}
	if err := r.store.RecordAttempt(ctx, name, outcome); err != nil {
		r.log.WarnContext(ctx, "failed to record delivery attempt",
			slog.String("channel", name), slog.Any("error", err))
	}
	return outcome
}
