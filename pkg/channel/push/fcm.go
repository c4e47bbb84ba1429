package push

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/agrovia/notifykit/pkg/channel"
	"github.com/agrovia/notifykit/pkg/preference"
)

type fcmProvider struct {
	client    *messaging.Client
	serveWeb  bool
	webOrigin string
}

// newFCMProvider builds a Firebase Cloud Messaging provider from the
// channel settings keys "credentials_json" (service account JSON) and
// optional "project_id". Web tokens ride the same multicast unless
// "web_via_fcm" is explicitly false; "web_origin" scopes the webpush
// link opened on click.
func newFCMProvider(ctx context.Context, cfg channel.Config) (Provider, error) {
	creds := cfg.Setting("credentials_json")
	if creds == "" {
		return nil, fmt.Errorf("%w: credentials_json is required", ErrInvalidConfig)
	}

	var fbCfg *firebase.Config
	if projectID := cfg.Setting("project_id"); projectID != "" {
		fbCfg = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, fbCfg, option.WithCredentialsJSON([]byte(creds)))
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}

	serveWeb := true
	if cfg.Settings != nil {
		if v, ok := cfg.Settings["web_via_fcm"].(bool); ok {
			serveWeb = v
		}
	}

	return &fcmProvider{
		client:    client,
		serveWeb:  serveWeb,
		webOrigin: cfg.Setting("web_origin"),
	}, nil
}

func (p *fcmProvider) Send(ctx context.Context, msg Message) []Result {
	tokens := append([]string(nil), msg.Tokens[preference.PlatformAndroid]...)
	tokens = append(tokens, msg.Tokens[preference.PlatformIOS]...)

	var results []Result
	if p.serveWeb {
		tokens = append(tokens, msg.Tokens[preference.PlatformWeb]...)
	} else {
		for _, token := range msg.Tokens[preference.PlatformWeb] {
			results = append(results, Result{Token: token, Err: ErrUnsupportedPlatform})
		}
	}
	if len(tokens) == 0 {
		return results
	}

	multicast := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
	}
	if p.serveWeb && p.webOrigin != "" {
		multicast.Webpush = &messaging.WebpushConfig{
			FCMOptions: &messaging.WebpushFCMOptions{Link: p.webOrigin},
		}
	}

	resp, err := p.client.SendEachForMulticast(ctx, multicast)
	if err != nil {
		for _, token := range tokens {
			results = append(results, Result{Token: token, Err: err})
		}
		return results
	}

	for i, r := range resp.Responses {
		res := Result{Token: tokens[i]}
		if r.Success {
			res.MessageID = r.MessageID
		} else {
			res.Err = r.Error
		}
		results = append(results, res)
	}
	return results
}
