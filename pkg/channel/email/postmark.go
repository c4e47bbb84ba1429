package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"

	"github.com/agrovia/notifykit/pkg/channel"
)

type postmarkProvider struct {
	client *postmark.Client
}

// newPostmarkProvider builds a Postmark-backed provider from the channel
// settings keys "server_token" and "account_token".
func newPostmarkProvider(cfg channel.Config) (Provider, error) {
	serverToken := cfg.Setting("server_token")
	accountToken := cfg.Setting("account_token")
	if serverToken == "" {
		return nil, fmt.Errorf("%w: server_token is required", ErrInvalidConfig)
	}
	if accountToken == "" {
		return nil, fmt.Errorf("%w: account_token is required", ErrInvalidConfig)
	}

	return &postmarkProvider{
		client: postmark.NewClient(serverToken, accountToken),
	}, nil
}

func (p *postmarkProvider) Send(ctx context.Context, msg Message) (string, error) {
	resp, err := p.client.SendEmail(ctx, postmark.Email{
		From:       msg.From,
		ReplyTo:    msg.ReplyTo,
		To:         msg.To,
		Subject:    msg.Subject,
		Tag:        msg.Tag,
		HTMLBody:   msg.HTMLBody,
		TextBody:   msg.TextBody,
		TrackOpens: true,
		TrackLinks: "HtmlOnly",
	})
	if err != nil {
		return "", errors.Join(ErrSendFailed, err)
	}
	if resp.ErrorCode > 0 {
		return "", errors.Join(ErrSendFailed, fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message))
	}
	return resp.MessageID, nil
}
