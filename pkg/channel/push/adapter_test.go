package push_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrovia/notifykit/pkg/channel"
	"github.com/agrovia/notifykit/pkg/channel/push"
	"github.com/agrovia/notifykit/pkg/notification"
	"github.com/agrovia/notifykit/pkg/preference"
	"github.com/agrovia/notifykit/pkg/template"
)

var ctx = context.Background()

// fakeProvider succeeds or fails per token based on the failing set.
type fakeProvider struct {
	failing map[string]error
	lastMsg push.Message
}

func (p *fakeProvider) Send(ctx context.Context, msg push.Message) []push.Result {
	p.lastMsg = msg
	var results []push.Result
	for _, tokens := range msg.Tokens {
		for _, token := range tokens {
			if err, ok := p.failing[token]; ok {
				results = append(results, push.Result{Token: token, Err: err})
				continue
			}
			results = append(results, push.Result{Token: token, MessageID: "fcm-" + token})
		}
	}
	return results
}

func newTestAdapter(t *testing.T, provider *fakeProvider) (*push.Adapter, channel.Store) {
	t.Helper()
	store := channel.NewMemoryStore()
	require.NoError(t, store.Create(ctx, channel.Config{
		Name:     "fcm-prod",
		Type:     channel.TypePush,
		Provider: push.ProviderFCM,
		Status:   channel.StatusActive,
		Tags:     []string{channel.TagDefault},
	}))
	adapter := push.NewAdapter(store, push.WithProviderFactory(func(ctx context.Context, cfg channel.Config) (push.Provider, error) {
		return provider, nil
	}))
	return adapter, store
}

func testDelivery(tokens ...preference.PushToken) channel.Delivery {
	return channel.Delivery{
		Notification: notification.Notification{
			ID:       "n1",
			Type:     "order_shipped",
			Category: "orders",
			Priority: notification.PriorityNormal,
		},
		Content: template.RenderedContent{
			Title:   "Order shipped",
			Message: "Your order is on its way",
		},
		Settings: preference.DeliverySettings{PushTokens: tokens},
	}
}

func TestAdapterSend(t *testing.T) {
	t.Parallel()

	t.Run("fans out to all tokens", func(t *testing.T) {
		t.Parallel()
		provider := &fakeProvider{}
		adapter, _ := newTestAdapter(t, provider)

		out := adapter.Send(ctx, testDelivery(
			preference.PushToken{Token: "and-1", Platform: preference.PlatformAndroid},
			preference.PushToken{Token: "ios-1", Platform: preference.PlatformIOS},
			preference.PushToken{Token: "web-1", Platform: preference.PlatformWeb},
		))
		require.True(t, out.Success)
		assert.Len(t, out.MessageIDs, 3)
		assert.Empty(t, out.Errors)
		assert.Equal(t, "fcm-prod", out.Channel)

		// Tokens arrive grouped by platform.
		assert.Equal(t, []string{"and-1"}, provider.lastMsg.Tokens[preference.PlatformAndroid])
		assert.Equal(t, []string{"ios-1"}, provider.lastMsg.Tokens[preference.PlatformIOS])
		assert.Equal(t, []string{"web-1"}, provider.lastMsg.Tokens[preference.PlatformWeb])
		assert.Equal(t, "n1", provider.lastMsg.Data["notification_id"])
	})

	t.Run("partial failure is still success", func(t *testing.T) {
		t.Parallel()
		provider := &fakeProvider{failing: map[string]error{
			"ios-1": errors.New("registration-token-not-registered"),
		}}
		adapter, _ := newTestAdapter(t, provider)

		out := adapter.Send(ctx, testDelivery(
			preference.PushToken{Token: "and-1", Platform: preference.PlatformAndroid},
			preference.PushToken{Token: "ios-1", Platform: preference.PlatformIOS},
		))
		assert.True(t, out.Success)
		assert.Len(t, out.MessageIDs, 1)
		require.Contains(t, out.Errors, "ios-1")
		assert.Contains(t, out.Errors["ios-1"], "not-registered")
	})

	t.Run("all tokens failing is a failure", func(t *testing.T) {
		t.Parallel()
		provider := &fakeProvider{failing: map[string]error{
			"and-1": errors.New("invalid-argument"),
			"ios-1": errors.New("invalid-argument"),
		}}
		adapter, _ := newTestAdapter(t, provider)

		out := adapter.Send(ctx, testDelivery(
			preference.PushToken{Token: "and-1", Platform: preference.PlatformAndroid},
			preference.PushToken{Token: "ios-1", Platform: preference.PlatformIOS},
		))
		assert.False(t, out.Success)
		assert.Contains(t, out.Error, "all 2 push tokens failed")
		assert.Len(t, out.Errors, 2)
		assert.Equal(t, "fcm-prod", out.Channel)
	})

	t.Run("no tokens fails fast", func(t *testing.T) {
		t.Parallel()
		adapter, _ := newTestAdapter(t, &fakeProvider{})

		out := adapter.Send(ctx, testDelivery())
		assert.False(t, out.Success)
		assert.Contains(t, out.Error, "no push tokens")
	})

	t.Run("push content override wins", func(t *testing.T) {
		t.Parallel()
		provider := &fakeProvider{}
		adapter, _ := newTestAdapter(t, provider)

		d := testDelivery(preference.PushToken{Token: "and-1", Platform: preference.PlatformAndroid})
		d.Content.Push = &template.RenderedPush{Title: "Shipped!", Body: "Tap to track"}
		out := adapter.Send(ctx, d)
		require.True(t, out.Success)

		assert.Equal(t, "Shipped!", provider.lastMsg.Title)
		assert.Equal(t, "Tap to track", provider.lastMsg.Body)
	})
}
