package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/agrovia/notifykit/pkg/channel"
)

// Event is the JSON envelope delivered to subscribed endpoints.
type Event struct {
	Event          string         `json:"event"`
	NotificationID string         `json:"notification_id"`
	UserID         string         `json:"user_id"`
	Timestamp      time.Time      `json:"timestamp"`
	Payload        map[string]any `json:"payload"`
}

// Adapter delivers notifications to user-configured webhook endpoints.
// The channel config supplies transport settings (timeout, retries,
// outbound auth); the endpoints themselves, with their secrets and
// event subscriptions, come from the recipient's preferences.
type Adapter struct {
	store   channel.Store
	clients *channel.Clients[*sender]
	log     *slog.Logger
	now     func() time.Time
}

// Option configures the Adapter.
type Option func(*Adapter)

// WithLogger sets the adapter's logger.
func WithLogger(log *slog.Logger) Option {
	return Option(func(a *Adapter) {
		a.log = log
	})
}

// WithClock overrides the timestamp source for event envelopes.
func WithClock(now func() time.Time) Option {
	return Option(func(a *Adapter) {
		a.now = now
	})
}

// NewAdapter creates a webhook adapter backed by the channel store.
func NewAdapter(store channel.Store, opts ...Option) *Adapter {
	a := &Adapter{
		store: store,
		log:   slog.Default(),
		now:   time.Now,
	}
	a.clients = channel.NewClients(store, channel.TypeWebhook, func(ctx context.Context, cfg channel.Config) (*sender, error) {
		return newSender(cfg)
	})
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) Type() channel.Type {
	return channel.TypeWebhook
}

func (a *Adapter) Init(ctx context.Context, cfg channel.Config) error {
	return a.clients.Init(ctx, cfg)
}

// Forget drops the cached sender for a channel.
func (a *Adapter) Forget(name string) {
	a.clients.Forget(name)
}

func (a *Adapter) Send(ctx context.Context, d channel.Delivery) channel.DeliveryOutcome {
	if len(d.Settings.Endpoints) == 0 {
		return channel.Failure(ErrNoEndpoints)
	}

	snd, cfg, err := a.clients.Resolve(ctx, d.ChannelName)
	if err != nil {
		return channel.Failure(err)
	}

	event := EventName(d.Notification.Category, d.Notification.Type)

	var payload map[string]any
	if wh := d.Content.Webhook; wh != nil {
		payload = wh.Payload
	} else {
		payload = map[string]any{
			"title":    d.Content.Title,
			"message":  d.Content.Message,
			"type":     d.Notification.Type,
			"category": d.Notification.Category,
		}
	}

	body, err := json.Marshal(Event{
		Event:          event,
		NotificationID: d.Notification.ID,
		UserID:         d.Notification.UserID,
		Timestamp:      a.now().UTC(),
		Payload:        payload,
	})
	if err != nil {
		return channel.Failure(err)
	}

	var outcome channel.DeliveryOutcome
	attempted := 0
	for _, ep := range d.Settings.Endpoints {
		if !Subscribed(event, ep.Events) {
			continue
		}
		attempted++

		deliveryID, err := snd.deliver(ctx, ep, body)
		if err != nil {
			if outcome.Errors == nil {
				outcome.Errors = make(map[string]string)
			}
			outcome.Errors[ep.URL] = err.Error()
			a.log.ErrorContext(ctx, "webhook delivery failed",
				slog.String("channel", cfg.Name),
				slog.String("endpoint", ep.URL),
				slog.String("notification_id", d.Notification.ID),
				slog.Any("error", err))
			continue
		}

		outcome.Success = true
		outcome.MessageIDs = append(outcome.MessageIDs, deliveryID)
		if outcome.MessageID == "" {
			outcome.MessageID = deliveryID
		}
	}

	// No endpoint subscribes to this event; nothing was attempted and
	// there is nothing to record against the channel.
	if attempted == 0 {
		return channel.DeliveryOutcome{Success: true}
	}

	outcome.Channel = cfg.Name
	if !outcome.Success {
		outcome.Error = fmt.Sprintf("all %d webhook endpoints failed", attempted)
	}
	return outcome
}
