package sms

import (
	"context"
	"errors"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/agrovia/notifykit/pkg/channel"
)

type twilioProvider struct {
	client *twilio.RestClient
}

// newTwilioProvider builds a Twilio-backed provider from the channel
// settings keys "account_sid" and "auth_token".
func newTwilioProvider(cfg channel.Config) (Provider, error) {
	accountSID := cfg.Setting("account_sid")
	authToken := cfg.Setting("auth_token")
	if accountSID == "" {
		return nil, fmt.Errorf("%w: account_sid is required", ErrInvalidConfig)
	}
	if authToken == "" {
		return nil, fmt.Errorf("%w: auth_token is required", ErrInvalidConfig)
	}

	return &twilioProvider{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
	}, nil
}

func (p *twilioProvider) Send(ctx context.Context, msg Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(msg.To)
	params.SetFrom(msg.From)
	params.SetBody(msg.Body)

	resp, err := p.client.Api.CreateMessage(params)
	if err != nil {
		return "", errors.Join(ErrSendFailed, err)
	}
	if resp.Sid == nil {
		return "", errors.Join(ErrSendFailed, errors.New("twilio returned no message SID"))
	}
	return *resp.Sid, nil
}
