package notifier

import (
	"context"
	"fmt"

	"github.com/agrovia/notifykit/pkg/notification"
)

// GetNotificationByID looks up one notification.
func (n *Notifier) GetNotificationByID(ctx context.Context, id string) (*notification.Notification, error) {
	return n.notifications.Get(ctx, id)
}

// GetUserNotifications lists a user's notifications with filtering and
// pagination, returning the total count before pagination.
func (n *Notifier) GetUserNotifications(ctx context.Context, userID string, opts notification.ListOptions) ([]notification.Notification, int, error) {
	if userID == "" {
		return nil, 0, ErrMissingRecipient
	}
	return n.notifications.List(ctx, userID, opts)
}

// MarkAsRead marks the given notifications as read for the user.
func (n *Notifier) MarkAsRead(ctx context.Context, userID string, ids ...string) error {
	if userID == "" {
		return ErrMissingRecipient
	}
	return n.notifications.MarkRead(ctx, userID, ids...)
}

// MarkAllAsRead marks every unread notification as read and returns how
// many were updated.
func (n *Notifier) MarkAllAsRead(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, ErrMissingRecipient
	}
	return n.notifications.MarkAllRead(ctx, userID)
}

// CountUnread returns the user's unread notification count.
func (n *Notifier) CountUnread(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, ErrMissingRecipient
	}
	return n.notifications.CountUnread(ctx, userID)
}

// ArchiveNotification archives one of the user's notifications. A
// notification owned by someone else reads as not found.
func (n *Notifier) ArchiveNotification(ctx context.Context, userID, id string) error {
	record, err := n.notifications.Get(ctx, id)
	if err != nil {
		return err
	}
	if record.UserID != userID {
		return fmt.Errorf("%w: %s", notification.ErrNotFound, id)
	}
	return n.notifications.UpdateStatus(ctx, id, notification.StatusArchived, "")
}

// DeleteNotification removes one of the user's notifications.
func (n *Notifier) DeleteNotification(ctx context.Context, userID, id string) error {
	if userID == "" {
		return ErrMissingRecipient
	}
	return n.notifications.Delete(ctx, userID, id)
}
