package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v2"

	"github.com/agrovia/notifykit/pkg/channel"
)

type resendProvider struct {
	client *resend.Client
}

// newResendProvider builds a Resend-backed provider from the channel
// settings key "api_key".
func newResendProvider(cfg channel.Config) (Provider, error) {
	apiKey := cfg.Setting("api_key")
	if apiKey == "" {
		return nil, fmt.Errorf("%w: api_key is required", ErrInvalidConfig)
	}

	return &resendProvider{
		client: resend.NewClient(apiKey),
	}, nil
}

func (p *resendProvider) Send(ctx context.Context, msg Message) (string, error) {
	params := &resend.SendEmailRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTMLBody,
		Text:    msg.TextBody,
		ReplyTo: msg.ReplyTo,
	}

	sent, err := p.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return "", errors.Join(ErrSendFailed, err)
	}
	return sent.Id, nil
}
