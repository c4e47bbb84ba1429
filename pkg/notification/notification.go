package notification

import (
	"time"
)

// Channel represents a delivery medium.
type Channel string

const (
	ChannelInApp   Channel = "in-app"
	ChannelEmail   Channel = "email"
	ChannelSMS     Channel = "sms"
	ChannelPush    Channel = "push"
	ChannelWebhook Channel = "webhook"
)

// Valid reports whether the channel is one of the known delivery media.
func (c Channel) Valid() bool {
	switch c {
	case ChannelInApp, ChannelEmail, ChannelSMS, ChannelPush, ChannelWebhook:
		return true
	}
	return false
}

// Priority represents the notification priority level.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Valid reports whether the priority is a known level.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Status represents the delivery lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
	StatusRead      Status = "read"
	StatusArchived  Status = "archived"
)

// Action represents a call-to-action attached to a notification.
type Action struct {
	Name    string `json:"name"`
	Text    string `json:"text"`
	URL     string `json:"url"`
	Icon    string `json:"icon,omitempty"`
	Primary bool   `json:"primary,omitempty"`
}

// Metadata carries the notification's origin and arbitrary extensions.
type Metadata struct {
	Source string         `json:"source,omitempty"`
	Extra  map[string]any `json:"extra,omitempty"`
}

// Notification is one user-facing notification instance. Channel-specific
// payloads live in Data keyed by channel name, e.g. Data["webhook"] holds
// the rendered webhook payload.
type Notification struct {
	ID           string                    `json:"id"`
	UserID       string                    `json:"user_id"`
	Type         string                    `json:"type"`
	Category     string                    `json:"category"`
	Title        string                    `json:"title"`
	Message      string                    `json:"message"`
	Data         map[string]map[string]any `json:"data,omitempty"`
	Priority     Priority                  `json:"priority"`
	Channel      Channel                   `json:"channel"`
	Template     string                    `json:"template,omitempty"`
	Actions      []Action                  `json:"actions,omitempty"`
	Status       Status                    `json:"status"`
	ScheduledFor *time.Time                `json:"scheduled_for,omitempty"`
	ExpiresAt    *time.Time                `json:"expires_at,omitempty"`
	DeliveredAt  *time.Time                `json:"delivered_at,omitempty"`
	ReadAt       *time.Time                `json:"read_at,omitempty"`
	ErrorMessage string                    `json:"error_message,omitempty"`
	IsActive     bool                      `json:"is_active"`
	Metadata     Metadata                  `json:"metadata,omitzero"`
	CreatedAt    time.Time                 `json:"created_at"`
	UpdatedAt    time.Time                 `json:"updated_at"`
}

// IsExpired returns true if the notification has passed its expiry time.
func (n *Notification) IsExpired() bool {
	if n.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*n.ExpiresAt)
}

// IsScheduled returns true if the notification is scheduled for a future
// time and must not be dispatched yet.
func (n *Notification) IsScheduled() bool {
	if n.ScheduledFor == nil {
		return false
	}
	return n.ScheduledFor.After(time.Now())
}

// IsRead returns true once the user has acknowledged the notification.
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}
