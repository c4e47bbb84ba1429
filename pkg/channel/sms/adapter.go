package sms

import (
	"context"
	"log/slog"
	"strings"

	"github.com/agrovia/notifykit/pkg/channel"
)

// maxLength is the single-segment SMS budget. Longer bodies are
// truncated with an ellipsis rather than split across segments.
const maxLength = 160

// Adapter delivers notifications over SMS channels. Channel configs
// select the backend through their provider field (twilio, http) and
// supply the sender number via the settings key "from_number".
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

// NewAdapter creates an SMS adapter backed by the channel store.
func NewAdapter(store channel.Store, opts ...Option) *Adapter {
	a := &Adapter{
		store: store,
		build: buildProvider,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.clients = channel.NewClients(store, channel.TypeSMS, func(ctx context.Context, cfg channel.Config) (Provider, error) {
		return a.build(cfg)
	})
	return a
}

func (a *Adapter) Type() channel.Type {
	return channel.TypeSMS
}

func (a *Adapter) Init(ctx context.Context, cfg channel.Config) error {
	return a.clients.Init(ctx, cfg)
}

// Forget drops the cached provider for a channel.
func (a *Adapter) Forget(name string) {
	a.clients.Forget(name)
}

func (a *Adapter) Send(ctx context.Context, d channel.Delivery) channel.DeliveryOutcome {
	if d.Settings.PhoneNumber == "" {
		return channel.Failure(ErrMissingPhoneNumber)
	}

	provider, cfg, err := a.clients.Resolve(ctx, d.ChannelName)
	if err != nil {
		return channel.Failure(err)
	}

	body := d.Content.Message
	if sms := d.Content.SMS; sms != nil && sms.Text != "" {
		body = sms.Text
	}

	msg := Message{
		To:   d.Settings.PhoneNumber,
		From: cfg.Setting("from_number"),
		Body: Truncate(d.Content.Title, body),
	}

	messageID, err := provider.Send(ctx, msg)
	if err != nil {
		a.log.ErrorContext(ctx, "sms delivery failed",
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

// Truncate fits a notification into the single-segment budget. The
// title is prefixed only when the body does not already contain it,
// and the result is cut at a rune boundary with an ellipsis.
func Truncate(title, body string) string {
	text := body
	if title != "" && !strings.Contains(body, title) {
		text = title + ": " + body
	}

	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	return string(runes[:maxLength-3]) + "..."
}
