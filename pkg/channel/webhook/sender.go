package webhook

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/agrovia/notifykit/pkg/channel"
	"github.com/agrovia/notifykit/pkg/preference"
	"github.com/agrovia/notifykit/pkg/retry"
)

// Retry defaults applied when a channel config does not override them.
const (
	defaultMaxAttempts  = 3
	defaultInitialDelay = time.Second
	defaultFactor       = 2.0
	defaultTimeout      = 10 * time.Second
)

// sender holds the per-channel HTTP client, retry policy, and auth
// configuration used for every endpoint the channel delivers to.
type sender struct {
	client     *http.Client
	policy     retry.Policy
	authHeader string
}

// newSender builds a sender from the channel settings. Recognized keys:
// timeout_ms, max_attempts, initial_delay_ms, backoff_factor, and the
// auth trio auth_type ("bearer" or "basic"), auth_token, username,
// password.
func newSender(cfg channel.Config) (*sender, error) {
	timeout := defaultTimeout
	if ms := cfg.SettingInt("timeout_ms"); ms > 0 {
		timeout = time.Duration(ms) * time.Millisecond
	}

	attempts := cfg.SettingInt("max_attempts")
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	delay := defaultInitialDelay
	if ms := cfg.SettingInt("initial_delay_ms"); ms > 0 {
		delay = time.Duration(ms) * time.Millisecond
	}
	factor := cfg.SettingFloat("backoff_factor")
	if factor <= 0 {
		factor = defaultFactor
	}

	s := &sender{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		policy: retry.NewPolicy(attempts, delay, factor),
	}

	switch cfg.Setting("auth_type") {
	case "":
	case "bearer":
		token := cfg.Setting("auth_token")
		if token == "" {
			return nil, fmt.Errorf("%w: auth_token is required for bearer auth", ErrInvalidConfig)
		}
		s.authHeader = "Bearer " + token
	case "basic":
		username := cfg.Setting("username")
		if username == "" {
			return nil, fmt.Errorf("%w: username is required for basic auth", ErrInvalidConfig)
		}
		creds := username + ":" + cfg.Setting("password")
		s.authHeader = "Basic " + base64.StdEncoding.EncodeToString([]byte(creds))
	default:
		return nil, fmt.Errorf("%w: unknown auth_type %q", ErrInvalidConfig, cfg.Setting("auth_type"))
	}

	return s, nil
}

// deliver posts the payload to one endpoint through the retry policy,
// signing it when the endpoint declares a secret. It returns the
// delivery ID attached to the request.
func (s *sender) deliver(ctx context.Context, ep preference.WebhookEndpoint, payload []byte) (string, error) {
	if _, err := url.ParseRequestURI(ep.URL); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidEndpoint, ep.URL)
	}

	headers := map[string]string{
		"Content-Type": "application/json",
		"User-Agent":   "notifykit-webhook/1.0",
	}
	if s.authHeader != "" {
		headers["Authorization"] = s.authHeader
	}

	deliveryID := uuid.New().String()
	if ep.Secret != "" {
		sig, err := SignPayload(ep.Secret, payload)
		if err != nil {
			return "", err
		}
		for k, v := range sig.Headers() {
			headers[k] = v
		}
		deliveryID = sig.ID
	} else {
		headers["X-Webhook-ID"] = deliveryID
	}

	err := s.policy.Do(ctx, func(ctx context.Context) error {
		return s.attempt(ctx, ep.URL, payload, headers)
	})
	if err != nil {
		return "", err
	}
	return deliveryID, nil
}

func (s *sender) attempt(ctx context.Context, endpoint string, payload []byte, headers map[string]string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &retry.StatusError{StatusCode: resp.StatusCode}
	}
	return nil
}
