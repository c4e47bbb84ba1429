package webhook_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrovia/notifykit/pkg/channel"
	"github.com/agrovia/notifykit/pkg/channel/webhook"
	"github.com/agrovia/notifykit/pkg/notification"
	"github.com/agrovia/notifykit/pkg/preference"
	"github.com/agrovia/notifykit/pkg/template"
)

var ctx = context.Background()

func newTestAdapter(t *testing.T, settings map[string]any) (*webhook.Adapter, channel.Store) {
	t.Helper()
	if settings == nil {
		settings = map[string]any{}
	}
	// Keep test retries fast.
	if _, ok := settings["initial_delay_ms"]; !ok {
		settings["initial_delay_ms"] = 1
	}

	store := channel.NewMemoryStore()
	require.NoError(t, store.Create(ctx, channel.Config{
		Name:     "webhook-default",
		Type:     channel.TypeWebhook,
		Provider: "http",
		Status:   channel.StatusActive,
		Tags:     []string{channel.TagDefault},
		Settings: settings,
	}))
	return webhook.NewAdapter(store), store
}

func testDelivery(endpoints ...preference.WebhookEndpoint) channel.Delivery {
	return channel.Delivery{
		Notification: notification.Notification{
			ID:       "n1",
			UserID:   "user1",
			Type:     "order_shipped",
			Category: "orders",
		},
		Content: template.RenderedContent{
			Title:   "Order shipped",
			Message: "Your order is on its way",
			Webhook: &template.RenderedWebhook{
				Payload: map[string]any{"order_id": "42", "status": "shipped"},
			},
		},
		Settings: preference.DeliverySettings{Endpoints: endpoints},
	}
}

func TestAdapterSend(t *testing.T) {
	t.Parallel()

	t.Run("delivers envelope to subscribed endpoint", func(t *testing.T) {
		t.Parallel()

		var got webhook.Event
		var contentType string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			contentType = r.Header.Get("Content-Type")
			body, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(body, &got))
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		adapter, _ := newTestAdapter(t, nil)
		out := adapter.Send(ctx, testDelivery(preference.WebhookEndpoint{
			URL:    srv.URL,
			Events: []string{"orders.order_shipped"},
		}))

		require.True(t, out.Success)
		require.Len(t, out.MessageIDs, 1)
		assert.Equal(t, "webhook-default", out.Channel)
		assert.Equal(t, "application/json", contentType)
		assert.Equal(t, "orders.order_shipped", got.Event)
		assert.Equal(t, "n1", got.NotificationID)
		assert.Equal(t, "user1", got.UserID)
		assert.Equal(t, "42", got.Payload["order_id"])
	})

	t.Run("signs payload when endpoint has a secret", func(t *testing.T) {
		t.Parallel()

		var body []byte
		var headers webhook.SignatureHeaders
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ = io.ReadAll(r.Body)
			ts, _ := strconv.ParseInt(r.Header.Get("X-Webhook-Timestamp"), 10, 64)
			headers = webhook.SignatureHeaders{
				Signature: r.Header.Get("X-Webhook-Signature"),
				Timestamp: ts,
				ID:        r.Header.Get("X-Webhook-ID"),
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		adapter, _ := newTestAdapter(t, nil)
		out := adapter.Send(ctx, testDelivery(preference.WebhookEndpoint{
			URL:    srv.URL,
			Secret: "s3cret",
		}))

		require.True(t, out.Success)
		assert.NotEmpty(t, headers.ID)
		assert.NoError(t, webhook.VerifySignature("s3cret", body, headers, time.Minute))
		assert.Error(t, webhook.VerifySignature("wrong", body, headers, time.Minute))
	})

	t.Run("skips unsubscribed endpoints", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		adapter, _ := newTestAdapter(t, nil)
		out := adapter.Send(ctx, testDelivery(preference.WebhookEndpoint{
			URL:    srv.URL,
			Events: []string{"ratings.new_review"},
		}))

		assert.True(t, out.Success)
		assert.Empty(t, out.MessageIDs)
		assert.Zero(t, hits.Load())
		assert.Empty(t, out.Channel, "nothing attempted, nothing to record")
	})

	t.Run("retries transient failures", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hits.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		adapter, _ := newTestAdapter(t, map[string]any{"max_attempts": 3})
		out := adapter.Send(ctx, testDelivery(preference.WebhookEndpoint{URL: srv.URL}))

		assert.True(t, out.Success)
		assert.Equal(t, int32(3), hits.Load())
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		adapter, _ := newTestAdapter(t, map[string]any{"max_attempts": 3})
		out := adapter.Send(ctx, testDelivery(preference.WebhookEndpoint{URL: srv.URL}))

		assert.False(t, out.Success)
		assert.Equal(t, int32(1), hits.Load())
		assert.Equal(t, "webhook-default", out.Channel)
		require.Contains(t, out.Errors, srv.URL)
		assert.Contains(t, out.Errors[srv.URL], "400")
	})

	t.Run("partial endpoint failure is still success", func(t *testing.T) {
		t.Parallel()

		good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer good.Close()
		bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer bad.Close()

		adapter, _ := newTestAdapter(t, nil)
		out := adapter.Send(ctx, testDelivery(
			preference.WebhookEndpoint{URL: good.URL},
			preference.WebhookEndpoint{URL: bad.URL},
		))

		assert.True(t, out.Success)
		assert.Len(t, out.MessageIDs, 1)
		require.Contains(t, out.Errors, bad.URL)
	})

	t.Run("attaches bearer auth from channel config", func(t *testing.T) {
		t.Parallel()

		var auth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		adapter, _ := newTestAdapter(t, map[string]any{
			"auth_type":  "bearer",
			"auth_token": "tok123",
		})
		out := adapter.Send(ctx, testDelivery(preference.WebhookEndpoint{URL: srv.URL}))

		require.True(t, out.Success)
		assert.Equal(t, "Bearer tok123", auth)
	})

	t.Run("no endpoints fails fast", func(t *testing.T) {
		t.Parallel()
		adapter, _ := newTestAdapter(t, nil)

		out := adapter.Send(ctx, testDelivery())
		assert.False(t, out.Success)
		assert.Contains(t, out.Error, "no webhook endpoints")
	})

	t.Run("default payload without webhook content", func(t *testing.T) {
		t.Parallel()

		var got webhook.Event
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(body, &got))
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		adapter, _ := newTestAdapter(t, nil)
		d := testDelivery(preference.WebhookEndpoint{URL: srv.URL})
		d.Content.Webhook = nil
		out := adapter.Send(ctx, d)

		require.True(t, out.Success)
		assert.Equal(t, "Order shipped", got.Payload["title"])
		assert.Equal(t, "orders", got.Payload["category"])
	})
}

func TestSubscribed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		event string
		subs  []string
		want  bool
	}{
		{"empty list matches all", "orders.order_shipped", nil, true},
		{"wildcard matches all", "orders.order_shipped", []string{"*"}, true},
		{"exact match", "orders.order_shipped", []string{"orders.order_shipped"}, true},
		{"category wildcard", "orders.order_shipped", []string{"orders.*"}, true},
		{"category wildcard other category", "ratings.new_review", []string{"orders.*"}, false},
		{"no match", "orders.order_shipped", []string{"ratings.new_review"}, false},
		{"later entry matches", "orders.order_shipped", []string{"ratings.*", "orders.*"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, webhook.Subscribed(tt.event, tt.subs))
		})
	}
}

func TestSignPayloadValidation(t *testing.T) {
	t.Parallel()

	_, err := webhook.SignPayload("", []byte("{}"))
	assert.ErrorIs(t, err, webhook.ErrInvalidConfig)

	_, err = webhook.SignPayload("secret", nil)
	assert.ErrorIs(t, err, webhook.ErrInvalidConfig)

	sig, err := webhook.SignPayload("secret", []byte(`{"a":1}`))
	require.NoError(t, err)
	assert.NotEmpty(t, sig.Signature)
	assert.NotZero(t, sig.Timestamp)
	assert.NotEmpty(t, sig.ID)
}
