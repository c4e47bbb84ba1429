package channel

import (
	"context"
	"time"
)

// ListOptions filters channel listings.
type ListOptions struct {
	Type   Type   // If set, only channels of this type
	Status Status // If set, only channels in this status
}

// Store handles channel configuration persistence. Channels are keyed
// by their unique name.
type Store interface {
	// Create stores a new channel config.
	Create(ctx context.Context, cfg Config) error

	// Get retrieves a channel by name.
	Get(ctx context.Context, name string) (*Config, error)

	// List returns channels matching the options.
	List(ctx context.Context, opts ListOptions) ([]Config, error)

	// Update replaces a channel config, preserving stats and timestamps.
	Update(ctx context.Context, cfg Config) error

	// Delete removes a channel.
	Delete(ctx context.Context, name string) error

	// SetStatus updates the operational status and error message.
	SetStatus(ctx context.Context, name string, status Status, errorMessage string) error

	// SetDefault tags the channel as default for its type, clearing the
	// tag from all other channels of the same type first.
	SetDefault(ctx context.Context, name string) error

	// RecordAttempt folds a delivery outcome into the channel's stats.
	RecordAttempt(ctx context.Context, name string, outcome DeliveryOutcome) error

	// MarkTested stamps the last-tested time.
	MarkTested(ctx context.Context, name string, at time.Time) error
}
