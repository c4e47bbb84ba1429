package push

import (
	"context"
	"fmt"

	"github.com/agrovia/notifykit/pkg/channel"
	"github.com/agrovia/notifykit/pkg/preference"
)

// Message is a composed push notification fanned out to a set of
// device tokens grouped by platform.
type Message struct {
	Tokens map[preference.Platform][]string
	Title  string
	Body   string
	Data   map[string]string
}

// Result is the per-token outcome of a fan-out.
type Result struct {
	Token     string
	MessageID string
	Err       error
}

// Provider fans a push message out to device tokens and reports one
// result per token. Providers never fail the whole batch; token-level
// errors are carried in the results.
type Provider interface {
	Send(ctx context.Context, msg Message) []Result
}

// Provider identifiers accepted in a channel config.
const (
	ProviderFCM     = "fcm"
	ProviderWebPush = "webpush"
)

// buildProvider constructs the provider named by the channel config.
func buildProvider(ctx context.Context, cfg channel.Config) (Provider, error) {
	switch cfg.Provider {
	case ProviderFCM:
		return newFCMProvider(ctx, cfg)
	case ProviderWebPush:
		return newWebPushProvider(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}
