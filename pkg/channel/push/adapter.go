package push

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/agrovia/notifykit/pkg/channel"
	"github.com/agrovia/notifykit/pkg/preference"
)

// Adapter delivers notifications over push channels. Channel configs
// select the backend through their provider field (fcm, webpush).
type Adapter struct {
	store   channel.Store
	clients *channel.Clients[Provider]
	build   func(ctx context.Context, cfg channel.Config) (Provider, error)
	log     *slog.Logger
}

// Option configures the Adapter.
type Option func(*Adapter)

// WithLogger sets the adapter's logger.
func WithLogger(log *slog.Logger) Option {
	return Option(func(a *Adapter) {
		a.log = log
	})
}

// WithProviderFactory replaces the provider constructor, mainly to
// inject fakes in tests.
func WithProviderFactory(build func(ctx context.Context, cfg channel.Config) (Provider, error)) Option {
	return Option(func(a *Adapter) {
		a.build = build
	})
}

// NewAdapter creates a push adapter backed by the channel store.
func NewAdapter(store channel.Store, opts ...Option) *Adapter {
	a := &Adapter{
		store: store,
		build: buildProvider,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.clients = channel.NewClients(store, channel.TypePush, func(ctx context.Context, cfg channel.Config) (Provider, error) {
		return a.build(ctx, cfg)
	})
	return a
}

func (a *Adapter) Type() channel.Type {
	return channel.TypePush
}

func (a *Adapter) Init(ctx context.Context, cfg channel.Config) error {
	return a.clients.Init(ctx, cfg)
}

// Forget drops the cached provider for a channel.
func (a *Adapter) Forget(name string) {
	a.clients.Forget(name)
}

func (a *Adapter) Send(ctx context.Context, d channel.Delivery) channel.DeliveryOutcome {
	if len(d.Settings.PushTokens) == 0 {
		return channel.Failure(ErrNoTokens)
	}

	provider, cfg, err := a.clients.Resolve(ctx, d.ChannelName)
	if err != nil {
		return channel.Failure(err)
	}

	results := provider.Send(ctx, a.compose(d))
	outcome := aggregate(results)
	outcome.Channel = cfg.Name

	if !outcome.Success {
		a.log.ErrorContext(ctx, "push delivery failed for all tokens",
			slog.String("channel", cfg.Name),
			slog.String("provider", cfg.Provider),
			slog.String("notification_id", d.Notification.ID),
			slog.Int("tokens", len(d.Settings.PushTokens)))
	}
	return outcome
}

func (a *Adapter) compose(d channel.Delivery) Message {
	title := d.Content.Title
	body := d.Content.Message
	if push := d.Content.Push; push != nil {
		if push.Title != "" {
			title = push.Title
		}
		if push.Body != "" {
			body = push.Body
		}
	}

	tokens := make(map[preference.Platform][]string)
	for _, t := range d.Settings.PushTokens {
		tokens[t.Platform] = append(tokens[t.Platform], t.Token)
	}

	return Message{
		Tokens: tokens,
		Title:  title,
		Body:   body,
		Data: map[string]string{
			"notification_id": d.Notification.ID,
			"type":            d.Notification.Type,
			"category":        d.Notification.Category,
			"priority":        string(d.Notification.Priority),
		},
	}
}

// aggregate folds per-token results into one outcome: success when any
// token was reached, message IDs for the successes, and an error per
// failed token.
func aggregate(results []Result) channel.DeliveryOutcome {
	var outcome channel.DeliveryOutcome
	for _, r := range results {
		if r.Err != nil {
			if outcome.Errors == nil {
				outcome.Errors = make(map[string]string)
			}
			outcome.Errors[r.Token] = r.Err.Error()
			continue
		}
		outcome.Success = true
		if r.MessageID != "" {
			outcome.MessageIDs = append(outcome.MessageIDs, r.MessageID)
			if outcome.MessageID == "" {
				outcome.MessageID = r.MessageID
			}
		}
	}
	if !outcome.Success {
		outcome.Error = fmt.Sprintf("all %d push tokens failed", len(results))
	}
	return outcome
}
