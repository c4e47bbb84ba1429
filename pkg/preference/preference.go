package preference

import (
	"time"

	"github.com/agrovia/notifykit/pkg/notification"
)

// Frequency controls how email deliveries are batched for a user.
type Frequency string

const (
	FrequencyImmediate Frequency = "immediate"
	FrequencyHourly    Frequency = "hourly"
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
)

// Platform identifies the push delivery target for a registered token.
type Platform string

const (
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
	PlatformWeb     Platform = "web"
)

// QuietHours suppresses non-urgent deliveries inside a daily window.
// Start and End are "HH:MM" in the configured IANA timezone; a window
// whose Start is later than its End wraps past midnight.
type QuietHours struct {
	Enabled  bool   `json:"enabled"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Timezone string `json:"timezone"`
}

// EmailSettings holds per-user email delivery configuration.
type EmailSettings struct {
	Enabled    bool      `json:"enabled"`
	Address    string    `json:"address,omitempty"`
	Frequency  Frequency `json:"frequency,omitempty"`
	DigestTime string    `json:"digest_time,omitempty"` // HH:MM, used when Frequency is daily/weekly
}

// SMSSettings holds per-user SMS delivery configuration.
type SMSSettings struct {
	Enabled     bool   `json:"enabled"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// PushToken is a device registration for push delivery.
type PushToken struct {
	Token    string   `json:"token"`
	Platform Platform `json:"platform"`
}

// PushSettings holds per-user push delivery configuration.
type PushSettings struct {
	Enabled bool        `json:"enabled"`
	Tokens  []PushToken `json:"tokens,omitempty"`
}

// WebhookEndpoint is a user-configured webhook destination. Events lists
// the "category.type" subscriptions it receives; "*" matches everything.
type WebhookEndpoint struct {
	URL    string   `json:"url"`
	Secret string   `json:"secret,omitempty"`
	Events []string `json:"events,omitempty"`
}

// WebhookSettings holds per-user webhook delivery configuration.
type WebhookSettings struct {
	Enabled   bool              `json:"enabled"`
	Endpoints []WebhookEndpoint `json:"endpoints,omitempty"`
}

// InAppSettings holds per-user in-app delivery configuration.
type InAppSettings struct {
	Enabled bool `json:"enabled"`
}

// Override adjusts delivery for a single category, type, or template.
// A channel entry wins over the Enabled flag; an unset field falls
// through to the next, less specific level.
type Override struct {
	Enabled  *bool                         `json:"enabled,omitempty"`
	Channels map[notification.Channel]bool `json:"channels,omitempty"`
	Priority notification.Priority         `json:"priority,omitempty"`
}

// Preference is the per-user notification configuration record. One
// exists per user, created lazily with defaults on first access.
type Preference struct {
	UserID     string     `json:"user_id"`
	Enabled    bool       `json:"enabled"`
	QuietHours QuietHours `json:"quiet_hours"`

	InApp   InAppSettings   `json:"in_app"`
	Email   EmailSettings   `json:"email"`
	SMS     SMSSettings     `json:"sms"`
	Push    PushSettings    `json:"push"`
	Webhook WebhookSettings `json:"webhook"`

	// Override maps keyed by category name, type name, and template name.
	Categories map[string]Override `json:"categories,omitempty"`
	Types      map[string]Override `json:"types,omitempty"`
	Templates  map[string]Override `json:"templates,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Default returns the preference record created on first access: all
// channels enabled except SMS and webhook, which require explicit
// user configuration before they are useful.
func Default(userID string) Preference {
	now := time.Now()
	return Preference{
		UserID:  userID,
		Enabled: true,
		QuietHours: QuietHours{
			Enabled:  false,
			Start:    "22:00",
			End:      "08:00",
			Timezone: "UTC",
		},
		InApp:     InAppSettings{Enabled: true},
		Email:     EmailSettings{Enabled: true, Frequency: FrequencyImmediate},
		SMS:       SMSSettings{Enabled: false},
		Push:      PushSettings{Enabled: true},
		Webhook:   WebhookSettings{Enabled: false},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ChannelEnabled reports the channel-level enabled flag.
func (p *Preference) ChannelEnabled(ch notification.Channel) bool {
	switch ch {
	case notification.ChannelInApp:
		return p.InApp.Enabled
	case notification.ChannelEmail:
		return p.Email.Enabled
	case notification.ChannelSMS:
		return p.SMS.Enabled
	case notification.ChannelPush:
		return p.Push.Enabled
	case notification.ChannelWebhook:
		return p.Webhook.Enabled
	default:
		return false
	}
}

// DeliverySettings is the channel-specific contact information the
// orchestrator hands to an adapter alongside the rendered content.
type DeliverySettings struct {
	EmailAddress string            `json:"email_address,omitempty"`
	Frequency    Frequency         `json:"frequency,omitempty"`
	DigestTime   string            `json:"digest_time,omitempty"`
	PhoneNumber  string            `json:"phone_number,omitempty"`
	PushTokens   []PushToken       `json:"push_tokens,omitempty"`
	Endpoints    []WebhookEndpoint `json:"endpoints,omitempty"`
}

// DeliverySettings resolves the contact details for one channel.
func (p *Preference) DeliverySettings(ch notification.Channel) DeliverySettings {
	switch ch {
	case notification.ChannelEmail:
		freq := p.Email.Frequency
		if freq == "" {
			freq = FrequencyImmediate
		}
		return DeliverySettings{
			EmailAddress: p.Email.Address,
			Frequency:    freq,
			DigestTime:   p.Email.DigestTime,
		}
	case notification.ChannelSMS:
		return DeliverySettings{PhoneNumber: p.SMS.PhoneNumber}
	case notification.ChannelPush:
		return DeliverySettings{PushTokens: p.Push.Tokens}
	case notification.ChannelWebhook:
		return DeliverySettings{Endpoints: p.Webhook.Endpoints}
	default:
		return DeliverySettings{}
	}
}
