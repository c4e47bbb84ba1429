package push

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/agrovia/notifykit/pkg/channel"
	"github.com/agrovia/notifykit/pkg/preference"
	"github.com/agrovia/notifykit/pkg/retry"
)

type webPushProvider struct {
	subscriber string
	publicKey  string
	privateKey string
	ttl        int
}

// newWebPushProvider builds a standards-based Web Push provider from
// the channel settings keys "vapid_public_key", "vapid_private_key",
// and "subscriber" (a contact mailto or URL). Only web tokens are
// supported; native tokens get an unsupported-platform result.
func newWebPushProvider(cfg channel.Config) (Provider, error) {
	pub := cfg.Setting("vapid_public_key")
	priv := cfg.Setting("vapid_private_key")
	sub := cfg.Setting("subscriber")
	if pub == "" || priv == "" {
		return nil, fmt.Errorf("%w: vapid_public_key and vapid_private_key are required", ErrInvalidConfig)
	}
	if sub == "" {
		return nil, fmt.Errorf("%w: subscriber is required", ErrInvalidConfig)
	}

	ttl := cfg.SettingInt("ttl")
	if ttl == 0 {
		ttl = 3600
	}

	return &webPushProvider{
		subscriber: sub,
		publicKey:  pub,
		privateKey: priv,
		ttl:        ttl,
	}, nil
}

// webPayload is the JSON document delivered to the service worker.
type webPayload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

func (p *webPushProvider) Send(ctx context.Context, msg Message) []Result {
	var results []Result
	for _, platform := range []preference.Platform{preference.PlatformAndroid, preference.PlatformIOS} {
		for _, token := range msg.Tokens[platform] {
			results = append(results, Result{Token: token, Err: ErrUnsupportedPlatform})
		}
	}

	payload, err := json.Marshal(webPayload{Title: msg.Title, Body: msg.Body, Data: msg.Data})
	if err != nil {
		for _, token := range msg.Tokens[preference.PlatformWeb] {
			results = append(results, Result{Token: token, Err: err})
		}
		return results
	}

	for _, token := range msg.Tokens[preference.PlatformWeb] {
		results = append(results, p.sendOne(ctx, token, payload))
	}
	return results
}

// sendOne delivers to a single subscription. The token is the
// browser-issued subscription JSON: endpoint plus auth and p256dh keys.
func (p *webPushProvider) sendOne(ctx context.Context, token string, payload []byte) Result {
	var sub webpush.Subscription
	if err := json.Unmarshal([]byte(token), &sub); err != nil {
		return Result{Token: token, Err: fmt.Errorf("%w: %w", ErrInvalidSubscription, err)}
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &sub, &webpush.Options{
		Subscriber:      p.subscriber,
		VAPIDPublicKey:  p.publicKey,
		VAPIDPrivateKey: p.privateKey,
		TTL:             p.ttl,
	})
	if err != nil {
		return Result{Token: token, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{Token: token, Err: &retry.StatusError{StatusCode: resp.StatusCode, Body: string(body)}}
	}

	// Push services return the receipt location for the message.
	if loc := resp.Header.Get("Location"); loc != "" {
		return Result{Token: token, MessageID: loc}
	}
	if resp.StatusCode == http.StatusCreated {
		return Result{Token: token, MessageID: sub.Endpoint}
	}
	return Result{Token: token}
}
