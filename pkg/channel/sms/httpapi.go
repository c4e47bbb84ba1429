package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/agrovia/notifykit/pkg/channel"
	"github.com/agrovia/notifykit/pkg/retry"
)

// httpProvider posts messages as JSON to a generic SMS gateway, for
// local aggregators that expose a plain HTTP API.
type httpProvider struct {
	url    string
	apiKey string
	client *http.Client
}

// newHTTPProvider builds a generic HTTP provider from the channel
// settings keys "url" and optional "api_key".
func newHTTPProvider(cfg channel.Config) (Provider, error) {
	url := cfg.Setting("url")
	if url == "" {
		return nil, fmt.Errorf("%w: url is required", ErrInvalidConfig)
	}

	return &httpProvider{
		url:    url,
		apiKey: cfg.Setting("api_key"),
		client: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (p *httpProvider) Send(ctx context.Context, msg Message) (string, error) {
	body, err := json.Marshal(map[string]string{
		"to":      msg.To,
		"from":    msg.From,
		"message": msg.Body,
	})
	if err != nil {
		return "", errors.Join(ErrSendFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return "", errors.Join(ErrSendFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", errors.Join(ErrSendFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", errors.Join(ErrSendFailed, &retry.StatusError{
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		})
	}

	// Gateways are not required to return an ID; fall back to a local one.
	var parsed struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err == nil && parsed.ID != "" {
		return parsed.ID, nil
	}
	return uuid.New().String(), nil
}
