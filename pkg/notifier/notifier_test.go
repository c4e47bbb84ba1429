package notifier_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrovia/notifykit/pkg/channel"
	"github.com/agrovia/notifykit/pkg/notification"
	"github.com/agrovia/notifykit/pkg/notifier"
	"github.com/agrovia/notifykit/pkg/preference"
	"github.com/agrovia/notifykit/pkg/template"
)

var ctx = context.Background()

// fakeAdapter delivers with a canned outcome and remembers what it saw.
type fakeAdapter struct {
	mu      sync.Mutex
	typ     channel.Type
	outcome channel.DeliveryOutcome
	sent    []channel.Delivery
	initErr error
}

func (a *fakeAdapter) Type() channel.Type { return a.typ }

func (a *fakeAdapter) Init(ctx context.Context, cfg channel.Config) error { return a.initErr }

func (a *fakeAdapter) Send(ctx context.Context, d channel.Delivery) channel.DeliveryOutcome {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sent = append(a.sent, d)
	return a.outcome
}

func (a *fakeAdapter) deliveries() []channel.Delivery {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]channel.Delivery(nil), a.sent...)
}

// clock is a mutable time source shared with the notifier under test.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	notifications *notification.MemoryStore
	templates     *template.MemoryStore
	preferences   *preference.MemoryStore
	channels      *channel.MemoryStore
	registry      *channel.Registry
	adapter       *fakeAdapter
	clock         *clock
	notifier      *notifier.Notifier
}

func newFixture(t *testing.T, opts ...notifier.Option) *fixture {
	t.Helper()

	f := &fixture{
		notifications: notification.NewMemoryStore(),
		templates:     template.NewMemoryStore(),
		preferences:   preference.NewMemoryStore(),
		channels:      channel.NewMemoryStore(),
		clock:         &clock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
		adapter: &fakeAdapter{
			typ:     channel.TypeEmail,
			outcome: channel.DeliveryOutcome{Success: true, MessageID: "msg-1", Channel: "primary-email"},
		},
	}
	f.registry = channel.NewRegistry(f.channels, channel.WithClock(f.clock.Now))
	f.registry.Register(f.adapter)

	require.NoError(t, f.channels.Create(ctx, channel.Config{
		Name:     "primary-email",
		Type:     channel.TypeEmail,
		Provider: "fake",
		Status:   channel.StatusActive,
	}))

	opts = append([]notifier.Option{notifier.WithClock(f.clock.Now)}, opts...)
	f.notifier = notifier.New(f.notifications, f.templates, f.preferences, f.registry, opts...)
	return f
}

func TestCreateAndSendValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	tests := []struct {
		name string
		req  notifier.SendRequest
		want error
	}{
		{"missing recipient", notifier.SendRequest{Type: "a", Category: "b", Title: "t", Message: "m"}, notifier.ErrMissingRecipient},
		{"missing type", notifier.SendRequest{UserID: "u1", Category: "b", Title: "t", Message: "m"}, notifier.ErrMissingType},
		{"missing category", notifier.SendRequest{UserID: "u1", Type: "a", Title: "t", Message: "m"}, notifier.ErrMissingCategory},
		{"missing content", notifier.SendRequest{UserID: "u1", Type: "a", Category: "b"}, notifier.ErrMissingContent},
		{"title without message", notifier.SendRequest{UserID: "u1", Type: "a", Category: "b", Title: "t"}, notifier.ErrMissingContent},
		{"bad channel", notifier.SendRequest{UserID: "u1", Type: "a", Category: "b", Title: "t", Message: "m", Channel: "pigeon"}, notifier.ErrInvalidChannel},
		{"bad priority", notifier.SendRequest{UserID: "u1", Type: "a", Category: "b", Title: "t", Message: "m", Priority: "asap"}, notifier.ErrInvalidPriority},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.notifier.CreateAndSend(ctx, tt.req)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateAndSendInApp(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	res, err := f.notifier.CreateAndSend(ctx, notifier.SendRequest{
		UserID:   "u1",
		Type:     "order_shipped",
		Category: "orders",
		Title:    "Order shipped",
		Message:  "Your order is on its way",
	})
	require.NoError(t, err)
	require.False(t, res.Skipped)
	require.NotNil(t, res.Notification)

	assert.True(t, res.Outcome.Success)
	assert.True(t, res.Outcome.Delivered)
	assert.Equal(t, notification.ChannelInApp, res.Notification.Channel)
	assert.Equal(t, notification.StatusDelivered, res.Notification.Status)
	assert.NotNil(t, res.Notification.DeliveredAt)
	assert.Empty(t, f.adapter.deliveries(), "in-app must not reach an adapter")
}

func TestCreateAndSendTemplate(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.templates.Create(ctx, template.Template{
		Name:            "welcome",
		Type:            "welcome",
		Category:        "account",
		TitleTemplate:   "Welcome, {{name}}!",
		MessageTemplate: "Hi {{name}}, your farm stand is live.",
		Email:           &template.EmailContent{Subject: "Welcome to Agrovia, {{name}}"},
		Variables:       []template.Variable{{Name: "name", Required: true}},
	})
	require.NoError(t, err)

	res, err := f.notifier.CreateAndSend(ctx, notifier.SendRequest{
		UserID:   "u1",
		Type:     "welcome",
		Category: "account",
		Template: "welcome",
		Channel:  notification.ChannelEmail,
		Data:     map[string]any{"name": "Asha"},
	})
	require.NoError(t, err)
	require.NotNil(t, res.Notification)

	assert.Equal(t, "Welcome, Asha!", res.Notification.Title)
	assert.Equal(t, "welcome", res.Notification.Template)
	assert.Equal(t, notification.StatusSent, res.Notification.Status)

	deliveries := f.adapter.deliveries()
	require.Len(t, deliveries, 1)
	require.NotNil(t, deliveries[0].Content.Email)
	assert.Equal(t, "Welcome to Agrovia, Asha", deliveries[0].Content.Email.Subject)

	// The rendered email is persisted so a later sweep need not re-render.
	assert.Equal(t, "Welcome to Agrovia, Asha", res.Notification.Data["email"]["subject"])
}

func TestCreateAndSendUnknownTemplate(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.notifier.CreateAndSend(ctx, notifier.SendRequest{
		UserID:   "u1",
		Type:     "welcome",
		Category: "account",
		Template: "nope",
	})
	require.ErrorIs(t, err, template.ErrNotFound)
}

func TestCreateAndSendPreferenceDenied(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	off := false
	pref := preference.Default("u1")
	pref.Categories = map[string]preference.Override{
		"marketing": {Enabled: &off},
	}
	require.NoError(t, f.preferences.Update(ctx, pref))

	res, err := f.notifier.CreateAndSend(ctx, notifier.SendRequest{
		UserID:   "u1",
		Type:     "sale",
		Category: "marketing",
		Title:    "Sale!",
		Message:  "Everything must go",
	})
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.NotEmpty(t, res.Reason)
	assert.Nil(t, res.Notification)

	// Nothing was persisted.
	list, total, err := f.notifications.List(ctx, "u1", notification.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, total)
}

func TestCreateAndSendDeliveryFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.adapter.outcome = channel.DeliveryOutcome{
		Success: false,
		Error:   "postmark: 406 inactive recipient",
		Channel: "primary-email",
	}

	res, err := f.notifier.CreateAndSend(ctx, notifier.SendRequest{
		UserID:   "u1",
		Type:     "order_shipped",
		Category: "orders",
		Title:    "t",
		Message:  "m",
		Channel:  notification.ChannelEmail,
	})
	require.NoError(t, err, "delivery failure is recorded on the notification, not returned")
	require.NotNil(t, res.Notification)

	assert.False(t, res.Outcome.Success)
	assert.Equal(t, notification.StatusFailed, res.Notification.Status)
	assert.Equal(t, "postmark: 406 inactive recipient", res.Notification.ErrorMessage)

	// The failure landed in the resolved channel's stats.
	cfg, err := f.channels.Get(ctx, "primary-email")
	require.NoError(t, err)
	assert.Equal(t, int64(1), cfg.Stats.Failed)
	assert.Zero(t, cfg.Stats.Sent)
}

func TestCreateAndSendRecordsStats(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.notifier.CreateAndSend(ctx, notifier.SendRequest{
		UserID:   "u1",
		Type:     "order_shipped",
		Category: "orders",
		Title:    "t",
		Message:  "m",
		Channel:  notification.ChannelEmail,
	})
	require.NoError(t, err)

	cfg, err := f.channels.Get(ctx, "primary-email")
	require.NoError(t, err)
	assert.Equal(t, int64(1), cfg.Stats.Sent)
}

func TestCreateAndSendQueuedStaysPending(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.adapter.outcome = channel.DeliveryOutcome{Success: true, Queued: true, Channel: "primary-email"}

	res, err := f.notifier.CreateAndSend(ctx, notifier.SendRequest{
		UserID:   "u1",
		Type:     "digest",
		Category: "orders",
		Title:    "t",
		Message:  "m",
		Channel:  notification.ChannelEmail,
	})
	require.NoError(t, err)
	assert.True(t, res.Outcome.Queued)
	assert.Equal(t, notification.StatusPending, res.Notification.Status)

	// Queued is deferred, not attempted: no stats movement.
	cfg, err := f.channels.Get(ctx, "primary-email")
	require.NoError(t, err)
	assert.Zero(t, cfg.Stats.Sent)
	assert.Zero(t, cfg.Stats.Failed)
}

func TestScheduledNotification(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	future := f.clock.Now().Add(time.Hour)

	res, err := f.notifier.CreateAndSend(ctx, notifier.SendRequest{
		UserID:       "u1",
		Type:         "reminder",
		Category:     "orders",
		Title:        "Pickup tomorrow",
		Message:      "Your crate is ready at stand 4",
		Channel:      notification.ChannelEmail,
		ScheduledFor: &future,
	})
	require.NoError(t, err)
	assert.Equal(t, notification.StatusPending, res.Notification.Status)
	assert.Empty(t, f.adapter.deliveries(), "future notifications are not dispatched")

	// Too early: the sweep sees nothing.
	sweep, err := f.notifier.ProcessScheduledNotifications(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, sweep.Processed)

	f.clock.Advance(2 * time.Hour)

	sweep, err = f.notifier.ProcessScheduledNotifications(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, sweep.Processed)
	assert.Equal(t, 1, sweep.Sent)
	assert.Zero(t, sweep.Failed)

	deliveries := f.adapter.deliveries()
	require.Len(t, deliveries, 1)
	assert.Equal(t, "Pickup tomorrow", deliveries[0].Content.Title)

	got, err := f.notifications.Get(ctx, res.Notification.ID)
	require.NoError(t, err)
	assert.Equal(t, notification.StatusSent, got.Status)
}

func TestProcessScheduledIsolatesFailures(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.adapter.outcome = channel.DeliveryOutcome{Success: false, Error: "boom", Channel: "primary-email"}

	past := f.clock.Now().Add(-time.Minute)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, f.notifications.Create(ctx, notification.Notification{
			ID:           id,
			UserID:       "u1",
			Type:         "reminder",
			Category:     "orders",
			Title:        "t",
			Message:      "m",
			Channel:      notification.ChannelEmail,
			Status:       notification.StatusPending,
			ScheduledFor: &past,
			IsActive:     true,
			CreatedAt:    f.clock.Now(),
			UpdatedAt:    f.clock.Now(),
		}))
	}

	sweep, err := f.notifier.ProcessScheduledNotifications(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, sweep.Processed)
	assert.Equal(t, 3, sweep.Failed)
	assert.Zero(t, sweep.Sent)
}

func TestProcessExpiredNotifications(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	expired := f.clock.Now().Add(-time.Hour)

	require.NoError(t, f.notifications.Create(ctx, notification.Notification{
		ID:        "old",
		UserID:    "u1",
		Type:      "reminder",
		Category:  "orders",
		Title:     "t",
		Message:   "m",
		Channel:   notification.ChannelInApp,
		Status:    notification.StatusDelivered,
		ExpiresAt: &expired,
		IsActive:  true,
		CreatedAt: f.clock.Now(),
		UpdatedAt: f.clock.Now(),
	}))

	sweep, err := f.notifier.ProcessExpiredNotifications(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, sweep.Processed)
	assert.Equal(t, 1, sweep.Archived)

	got, err := f.notifications.Get(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, notification.StatusArchived, got.Status)

	// Second sweep finds nothing left.
	sweep, err = f.notifier.ProcessExpiredNotifications(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, sweep.Processed)
}

// deniedGuard refuses every claim, simulating another worker owning the
// sweep items.
type deniedGuard struct{}

func (deniedGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return false, nil
}

// brokenGuard fails every claim attempt.
type brokenGuard struct{}

func (brokenGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return false, errors.New("redis: connection refused")
}

func TestSweepGuard(t *testing.T) {
	t.Parallel()

	seed := func(t *testing.T, f *fixture) {
		t.Helper()
		expired := f.clock.Now().Add(-time.Hour)
		require.NoError(t, f.notifications.Create(ctx, notification.Notification{
			ID:        "old",
			UserID:    "u1",
			Type:      "reminder",
			Category:  "orders",
			Title:     "t",
			Message:   "m",
			Channel:   notification.ChannelInApp,
			Status:    notification.StatusDelivered,
			ExpiresAt: &expired,
			IsActive:  true,
			CreatedAt: f.clock.Now(),
			UpdatedAt: f.clock.Now(),
		}))
	}

	t.Run("denied claim skips item", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, notifier.WithGuard(deniedGuard{}))
		seed(t, f)

		sweep, err := f.notifier.ProcessExpiredNotifications(ctx, 10)
		require.NoError(t, err)
		assert.Zero(t, sweep.Processed)
	})

	t.Run("guard failure fails open", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, notifier.WithGuard(brokenGuard{}))
		seed(t, f)

		sweep, err := f.notifier.ProcessExpiredNotifications(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, 1, sweep.Archived)
	})
}
