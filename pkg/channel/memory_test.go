package channel_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrovia/notifykit/pkg/channel"
)

func TestMemoryStoreCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("stores channel with testing status by default", func(t *testing.T) {
		t.Parallel()
		store := channel.NewMemoryStore()

		err := store.Create(ctx, channel.Config{
			Name:     "primary-postmark",
			Type:     channel.TypeEmail,
			Provider: "postmark",
		})
		require.NoError(t, err)

		got, err := store.Get(ctx, "primary-postmark")
		require.NoError(t, err)
		assert.Equal(t, channel.StatusTesting, got.Status)
		assert.False(t, got.CreatedAt.IsZero())
	})

	t.Run("rejects duplicate name", func(t *testing.T) {
		t.Parallel()
		store := channel.NewMemoryStore()

		cfg := channel.Config{Name: "twilio-prod", Type: channel.TypeSMS, Provider: "twilio"}
		require.NoError(t, store.Create(ctx, cfg))
		assert.ErrorIs(t, store.Create(ctx, cfg), channel.ErrAlreadyExists)
	})

	t.Run("rejects missing name and invalid type", func(t *testing.T) {
		t.Parallel()
		store := channel.NewMemoryStore()

		assert.ErrorIs(t, store.Create(ctx, channel.Config{Type: channel.TypeEmail}), channel.ErrMissingName)
		assert.ErrorIs(t, store.Create(ctx, channel.Config{Name: "x", Type: "carrier-pigeon"}), channel.ErrInvalidType)
	})
}

func TestMemoryStoreList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := channel.NewMemoryStore()

	require.NoError(t, store.Create(ctx, channel.Config{Name: "email-a", Type: channel.TypeEmail, Provider: "smtp", Status: channel.StatusActive}))
	require.NoError(t, store.Create(ctx, channel.Config{Name: "email-b", Type: channel.TypeEmail, Provider: "postmark", Status: channel.StatusInactive}))
	require.NoError(t, store.Create(ctx, channel.Config{Name: "sms-a", Type: channel.TypeSMS, Provider: "twilio", Status: channel.StatusActive}))

	all, err := store.List(ctx, channel.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	emails, err := store.List(ctx, channel.ListOptions{Type: channel.TypeEmail})
	require.NoError(t, err)
	assert.Len(t, emails, 2)

	activeEmails, err := store.List(ctx, channel.ListOptions{Type: channel.TypeEmail, Status: channel.StatusActive})
	require.NoError(t, err)
	require.Len(t, activeEmails, 1)
	assert.Equal(t, "email-a", activeEmails[0].Name)
}

func TestMemoryStoreUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("preserves stats and timestamps", func(t *testing.T) {
		t.Parallel()
		store := channel.NewMemoryStore()

		require.NoError(t, store.Create(ctx, channel.Config{Name: "email-a", Type: channel.TypeEmail, Provider: "smtp", Status: channel.StatusActive}))
		require.NoError(t, store.RecordAttempt(ctx, "email-a", channel.DeliveryOutcome{Success: true}))

		updated := channel.Config{Name: "email-a", Type: channel.TypeEmail, Provider: "postmark", Status: channel.StatusActive}
		require.NoError(t, store.Update(ctx, updated))

		got, err := store.Get(ctx, "email-a")
		require.NoError(t, err)
		assert.Equal(t, "postmark", got.Provider)
		assert.Equal(t, int64(1), got.Stats.Sent)
	})

	t.Run("unknown channel", func(t *testing.T) {
		t.Parallel()
		store := channel.NewMemoryStore()

		err := store.Update(ctx, channel.Config{Name: "ghost", Type: channel.TypeEmail})
		assert.ErrorIs(t, err, channel.ErrNotFound)
	})
}

func TestMemoryStoreSetDefault(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := channel.NewMemoryStore()

	require.NoError(t, store.Create(ctx, channel.Config{
		Name: "email-a", Type: channel.TypeEmail, Provider: "smtp",
		Status: channel.StatusActive, Tags: []string{channel.TagDefault},
	}))
	require.NoError(t, store.Create(ctx, channel.Config{
		Name: "email-b", Type: channel.TypeEmail, Provider: "postmark",
		Status: channel.StatusActive,
	}))
	require.NoError(t, store.Create(ctx, channel.Config{
		Name: "sms-a", Type: channel.TypeSMS, Provider: "twilio",
		Status: channel.StatusActive, Tags: []string{channel.TagDefault},
	}))

	require.NoError(t, store.SetDefault(ctx, "email-b"))

	a, err := store.Get(ctx, "email-a")
	require.NoError(t, err)
	assert.False(t, a.IsDefault(), "previous default must lose the tag")

	b, err := store.Get(ctx, "email-b")
	require.NoError(t, err)
	assert.True(t, b.IsDefault())

	sms, err := store.Get(ctx, "sms-a")
	require.NoError(t, err)
	assert.True(t, sms.IsDefault(), "other types keep their default")
}

func TestMemoryStoreRecordAttempt(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := channel.NewMemoryStore()

	require.NoError(t, store.Create(ctx, channel.Config{Name: "email-a", Type: channel.TypeEmail, Provider: "smtp", Status: channel.StatusActive}))

	require.NoError(t, store.RecordAttempt(ctx, "email-a", channel.DeliveryOutcome{Success: true, MessageID: "m1"}))
	require.NoError(t, store.RecordAttempt(ctx, "email-a", channel.DeliveryOutcome{Success: true, Delivered: true}))
	require.NoError(t, store.RecordAttempt(ctx, "email-a", channel.DeliveryOutcome{Success: false, Error: "boom"}))
	require.NoError(t, store.RecordAttempt(ctx, "email-a", channel.DeliveryOutcome{Queued: true}))

	got, err := store.Get(ctx, "email-a")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Stats.Sent)
	assert.Equal(t, int64(1), got.Stats.Delivered)
	assert.Equal(t, int64(1), got.Stats.Failed)
	require.NotNil(t, got.Stats.LastSentAt)
	assert.WithinDuration(t, time.Now(), *got.Stats.LastSentAt, time.Minute)
}

func TestMemoryStoreSetStatusAndDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := channel.NewMemoryStore()

	require.NoError(t, store.Create(ctx, channel.Config{Name: "email-a", Type: channel.TypeEmail, Provider: "smtp"}))

	require.NoError(t, store.SetStatus(ctx, "email-a", channel.StatusError, "authentication failed"))
	got, err := store.Get(ctx, "email-a")
	require.NoError(t, err)
	assert.Equal(t, channel.StatusError, got.Status)
	assert.Equal(t, "authentication failed", got.ErrorMessage)

	assert.ErrorIs(t, store.SetStatus(ctx, "email-a", "bogus", ""), channel.ErrInvalidStatus)

	require.NoError(t, store.Delete(ctx, "email-a"))
	_, err = store.Get(ctx, "email-a")
	assert.ErrorIs(t, err, channel.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "email-a"), channel.ErrNotFound)
}
