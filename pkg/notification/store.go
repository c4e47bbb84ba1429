package notification

import (
	"context"
	"time"
)

// Store handles notification persistence and retrieval.
type Store interface {
	// Create stores a new notification.
	Create(ctx context.Context, n Notification) error

	// Get retrieves a notification by id.
	Get(ctx context.Context, id string) (*Notification, error)

	// List returns a user's notifications matching the options, along
	// with the total count before pagination.
	List(ctx context.Context, userID string, opts ListOptions) ([]Notification, int, error)

	// UpdateStatus transitions a notification through the lifecycle,
	// recording the error message for failed deliveries. The transition
	// is validated against the state machine.
	UpdateStatus(ctx context.Context, id string, status Status, errorMessage string) error

	// MarkRead marks the given notifications as read for the user.
	// Unknown ids and notifications still pending are skipped.
	MarkRead(ctx context.Context, userID string, ids ...string) error

	// MarkAllRead marks every unread notification as read for the user
	// and returns how many were updated.
	MarkAllRead(ctx context.Context, userID string) (int, error)

	// CountUnread returns the number of unread, unexpired notifications.
	CountUnread(ctx context.Context, userID string) (int, error)

	// Delete removes a notification owned by the user.
	Delete(ctx context.Context, userID, id string) error

	// ListScheduledDue returns pending notifications whose scheduled
	// time has elapsed, oldest first, bounded by limit.
	ListScheduledDue(ctx context.Context, before time.Time, limit int) ([]Notification, error)

	// ListExpired returns notifications past their expiry that are not
	// yet archived, bounded by limit.
	ListExpired(ctx context.Context, before time.Time, limit int) ([]Notification, error)
}

// ListOptions provides filtering and pagination for listing notifications.
type ListOptions struct {
	Status     Status  // If set, only return notifications in this status
	Category   string  // If set, filter by category
	Type       string  // If set, filter by type
	Channel    Channel // If set, filter by channel
	OnlyUnread bool    // When true, only return unread notifications
	Limit      int     // Maximum number to return (0 = no limit)
	Offset     int     // Number to skip for pagination
}
