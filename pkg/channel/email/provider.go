package email

import (
	"context"
	"fmt"
	"regexp"

	"github.com/agrovia/notifykit/pkg/channel"
)

// Message is a fully composed email ready for a provider.
type Message struct {
	From     string
	ReplyTo  string
	To       string
	Subject  string
	HTMLBody string
	TextBody string
	Tag      string
}

// Provider sends composed emails through one transactional backend and
// returns the provider's message ID.
type Provider interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// Provider identifiers accepted in a channel config.
const (
	ProviderSMTP     = "smtp"
	ProviderPostmark = "postmark"
	ProviderResend   = "resend"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// buildProvider constructs the provider named by the channel config.
func buildProvider(cfg channel.Config) (Provider, error) {
	switch cfg.Provider {
	case ProviderSMTP:
		return newSMTPProvider(cfg)
	case ProviderPostmark:
		return newPostmarkProvider(cfg)
	case ProviderResend:
		return newResendProvider(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}
