package channel

import (
	"context"

	"github.com/agrovia/notifykit/pkg/notification"
	"github.com/agrovia/notifykit/pkg/preference"
	"github.com/agrovia/notifykit/pkg/template"
)

// DeliveryOutcome is the terminal result of a send attempt. Adapters
// never return errors from Send; failures are reported through Success
// and Error so the orchestrator can always record a terminal status.
type DeliveryOutcome struct {
	Success bool `json:"success"`

	// Delivered is set when the transport confirms receipt, which only
	// in-app delivery can do synchronously.
	Delivered bool `json:"delivered,omitempty"`

	// Queued is set when delivery was deferred rather than attempted,
	// e.g. a digest-frequency email.
	Queued bool `json:"queued,omitempty"`

	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`

	// Channel is the name of the channel config the adapter resolved
	// for this attempt. The orchestrator records delivery stats against
	// it; empty when no channel was reached.
	Channel string `json:"channel,omitempty"`

	// Multi-destination adapters aggregate per-target results here:
	// provider message IDs for successes and an error per failed
	// token or endpoint.
	MessageIDs []string          `json:"message_ids,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
}

// Failure builds a failed outcome from an error.
func Failure(err error) DeliveryOutcome {
	return DeliveryOutcome{Success: false, Error: err.Error()}
}

// Delivery bundles everything an adapter needs for one send: the
// persisted notification, the rendered content for the adapter's
// channel, and the recipient's resolved contact settings. ChannelName
// pins a specific channel config; when empty the adapter picks the
// default-tagged active channel of its type, or the first active one.
type Delivery struct {
	Notification notification.Notification
	Content      template.RenderedContent
	Settings     preference.DeliverySettings
	ChannelName  string
}

// Adapter delivers notifications over one channel type.
type Adapter interface {
	// Type identifies the channel type this adapter serves.
	Type() Type

	// Init builds and caches the provider client for the given channel
	// config. A failure marks the channel record as errored.
	Init(ctx context.Context, cfg Config) error

	// Send attempts delivery and reports a terminal outcome.
	Send(ctx context.Context, d Delivery) DeliveryOutcome
}
