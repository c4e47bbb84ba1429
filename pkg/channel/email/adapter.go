package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/agrovia/notifykit/pkg/channel"
	"github.com/agrovia/notifykit/pkg/preference"
)

// Adapter delivers notifications over email channels. Channel configs
// select the backend through their provider field (smtp, postmark,
// resend) and supply the sender identity via the settings keys
// "from_address" and "reply_to".
type Adapter struct {
	store   channel.Store
	clients *channel.Clients[Provider]
	build   func(cfg channel.Config) (Provider, error)
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
func WithProviderFactory(build func(cfg channel.Config) (Provider, error)) Option {
	return Option(func(a *Adapter) {
		a.build = build
	})
}

// NewAdapter creates an email adapter backed by the channel store.
func NewAdapter(store channel.Store, opts ...Option) *Adapter {
	a := &Adapter{
		store: store,
		build: buildProvider,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.clients = channel.NewClients(store, channel.TypeEmail, func(ctx context.Context, cfg channel.Config) (Provider, error) {
		return a.build(cfg)
	})
	return a
}

func (a *Adapter) Type() channel.Type {
	return channel.TypeEmail
}

func (a *Adapter) Init(ctx context.Context, cfg channel.Config) error {
	return a.clients.Init(ctx, cfg)
}

// Forget drops the cached provider for a channel.
func (a *Adapter) Forget(name string) {
	a.clients.Forget(name)
}

func (a *Adapter) Send(ctx context.Context, d channel.Delivery) channel.DeliveryOutcome {
	// Non-immediate frequencies are deferred to a digest, not sent now.
	if d.Settings.Frequency != "" && d.Settings.Frequency != preference.FrequencyImmediate {
		return channel.DeliveryOutcome{Success: true, Queued: true}
	}

	if d.Settings.EmailAddress == "" {
		return channel.Failure(ErrMissingAddress)
	}
	if !emailRegex.MatchString(d.Settings.EmailAddress) {
		return channel.Failure(fmt.Errorf("%w: %q", ErrInvalidAddress, d.Settings.EmailAddress))
	}

	provider, cfg, err := a.clients.Resolve(ctx, d.ChannelName)
	if err != nil {
		return channel.Failure(err)
	}

	msg := a.compose(cfg, d)
	messageID, err := provider.Send(ctx, msg)
	if err != nil {
		a.log.ErrorContext(ctx, "email delivery failed",
			slog.String("channel", cfg.Name),
			slog.String("provider", cfg.Provider),
			slog.String("notification_id", d.Notification.ID),
			slog.Any("error", err))
		outcome := channel.Failure(err)
		outcome.Channel = cfg.Name
		return outcome
	}
	return channel.DeliveryOutcome{Success: true, MessageID: messageID, Channel: cfg.Name}
}

func (a *Adapter) compose(cfg *channel.Config, d channel.Delivery) Message {
	msg := Message{
		From:    cfg.Setting("from_address"),
		ReplyTo: cfg.Setting("reply_to"),
		To:      d.Settings.EmailAddress,
		Subject: d.Content.Title,
		Tag:     d.Notification.Type,
	}
	if email := d.Content.Email; email != nil {
		if email.Subject != "" {
			msg.Subject = email.Subject
		}
		msg.HTMLBody = email.HTMLBody
		msg.TextBody = email.TextBody
	}
	if msg.HTMLBody == "" && msg.TextBody == "" {
		msg.TextBody = d.Content.Message
	}
	return msg
}
