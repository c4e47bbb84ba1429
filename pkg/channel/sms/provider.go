package sms

import (
	"context"
	"fmt"

	"github.com/agrovia/notifykit/pkg/channel"
)

// Message is a composed SMS ready for a provider.
type Message struct {
	To   string
	From string
	Body string
}

// Provider sends SMS messages through one backend and returns the
// provider's message ID.
type Provider interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// Provider identifiers accepted in a channel config.
const (
	ProviderTwilio = "twilio"
	ProviderHTTP   = "http"
)

// buildProvider constructs the provider named by the channel config.
func buildProvider(cfg channel.Config) (Provider, error) {
	switch cfg.Provider {
	case ProviderTwilio:
		return newTwilioProvider(cfg)
	case ProviderHTTP:
		return newHTTPProvider(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}
