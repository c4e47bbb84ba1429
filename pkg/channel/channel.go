package channel

import (
	"slices"
	"time"
)

// Type classifies a delivery channel by transport.
type Type string

const (
	TypeInApp   Type = "in-app"
	TypeEmail   Type = "email"
	TypeSMS     Type = "sms"
	TypePush    Type = "push"
	TypeWebhook Type = "webhook"
	TypeCustom  Type = "custom"
)

// Valid reports whether t is a known channel type.
func (t Type) Valid() bool {
	switch t {
	case TypeInApp, TypeEmail, TypeSMS, TypePush, TypeWebhook, TypeCustom:
		return true
	}
	return false
}

// Status reflects a channel's operational state.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusTesting  Status = "testing"
	StatusError    Status = "error"
)

// Valid reports whether s is a known channel status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusTesting, StatusError:
		return true
	}
	return false
}

// TagDefault marks the channel adapters fall back to when no channel
// name is given. At most one channel per type carries it.
const TagDefault = "default"

// Stats accumulates delivery counters for a channel.
type Stats struct {
	Sent       int64      `json:"sent"`
	Delivered  int64      `json:"delivered"`
	Failed     int64      `json:"failed"`
	LastSentAt *time.Time `json:"last_sent_at,omitempty"`
}

// Config is an administrator-managed delivery channel instance, e.g.
// "primary-postmark" or "twilio-prod". The Settings blob carries
// provider-specific configuration interpreted by the owning adapter.
type Config struct {
	Name         string         `json:"name"`
	DisplayName  string         `json:"display_name,omitempty"`
	Type         Type           `json:"type"`
	Provider     string         `json:"provider"`
	Settings     map[string]any `json:"settings,omitempty"`
	Status       Status         `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
	Stats        Stats          `json:"stats"`
	LastTested   *time.Time     `json:"last_tested,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// HasTag reports whether the channel carries the given tag.
func (c *Config) HasTag(tag string) bool {
	return slices.Contains(c.Tags, tag)
}

// IsDefault reports whether the channel is the default for its type.
func (c *Config) IsDefault() bool {
	return c.HasTag(TagDefault)
}

// IsActive reports whether the channel accepts deliveries.
func (c *Config) IsActive() bool {
	return c.Status == StatusActive
}

// Setting returns a string value from the provider settings blob.
func (c *Config) Setting(key string) string {
	if c.Settings == nil {
		return ""
	}
	v, _ := c.Settings[key].(string)
	return v
}

// SettingInt returns an integer value from the provider settings blob.
// JSON decoding stores numbers as float64, so both forms are accepted.
func (c *Config) SettingInt(key string) int {
	if c.Settings == nil {
		return 0
	}
	switch v := c.Settings[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// SettingFloat returns a float value from the provider settings blob.
func (c *Config) SettingFloat(key string) float64 {
	if c.Settings == nil {
		return 0
	}
	switch v := c.Settings[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// SettingBool returns a boolean value from the provider settings blob.
func (c *Config) SettingBool(key string) bool {
	if c.Settings == nil {
		return false
	}
	v, _ := c.Settings[key].(bool)
	return v
}
