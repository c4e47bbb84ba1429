package template

import (
	"time"

	"github.com/agrovia/notifykit/pkg/notification"
)

// Variable declares a placeholder the template expects. Required
// variables are enforced only by ValidateVariables; rendering itself is
// lenient and leaves unresolved placeholders verbatim.
type Variable struct {
	Name     string `json:"name" yaml:"name"`
	Required bool   `json:"required" yaml:"required"`
	Default  string `json:"default,omitempty" yaml:"default,omitempty"`
	Example  string `json:"example,omitempty" yaml:"example,omitempty"`
}

// EmailContent holds channel-specific template overrides for email.
// Empty fields fall back to the template's title/message.
type EmailContent struct {
	Subject  string `json:"subject,omitempty" yaml:"subject,omitempty"`
	HTMLBody string `json:"html_body,omitempty" yaml:"html_body,omitempty"`
	TextBody string `json:"text_body,omitempty" yaml:"text_body,omitempty"`
}

// SMSContent holds channel-specific template overrides for SMS.
type SMSContent struct {
	Text string `json:"text,omitempty" yaml:"text,omitempty"`
}

// PushContent holds channel-specific template overrides for push.
type PushContent struct {
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	Body  string `json:"body,omitempty" yaml:"body,omitempty"`
}

// WebhookContent declares the payload shape delivered to webhook
// endpoints. Placeholder substitution recurses through string leaves of
// the shape; non-string leaves pass through untouched.
type WebhookContent struct {
	Payload map[string]any `json:"payload,omitempty" yaml:"payload,omitempty"`
}

// Template is a versioned, named content generator. Title and message
// templates contain {{variable}} placeholders substituted at render time.
type Template struct {
	ID              string                `json:"id" yaml:"-"`
	Name            string                `json:"name" yaml:"name"`
	DisplayName     string                `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	Description     string                `json:"description,omitempty" yaml:"description,omitempty"`
	Type            string                `json:"type" yaml:"type"`
	Category        string                `json:"category" yaml:"category"`
	TitleTemplate   string                `json:"title_template" yaml:"title"`
	MessageTemplate string                `json:"message_template" yaml:"message"`
	DefaultPriority notification.Priority `json:"default_priority,omitempty" yaml:"priority,omitempty"`
	Email           *EmailContent         `json:"email,omitempty" yaml:"email,omitempty"`
	SMS             *SMSContent           `json:"sms,omitempty" yaml:"sms,omitempty"`
	Push            *PushContent          `json:"push,omitempty" yaml:"push,omitempty"`
	Webhook         *WebhookContent       `json:"webhook,omitempty" yaml:"webhook,omitempty"`
	DefaultActions  []notification.Action `json:"default_actions,omitempty" yaml:"actions,omitempty"`
	Variables       []Variable            `json:"variables,omitempty" yaml:"variables,omitempty"`
	Active          bool                  `json:"active" yaml:"-"`
	Version         int                   `json:"version" yaml:"-"`
	PreviousID      string                `json:"previous_id,omitempty" yaml:"-"`
	CreatedAt       time.Time             `json:"created_at" yaml:"-"`
	UpdatedAt       time.Time             `json:"updated_at" yaml:"-"`
}

// Priority returns the template's default priority, defaulting to normal.
func (t *Template) Priority() notification.Priority {
	if t.DefaultPriority == "" {
		return notification.PriorityNormal
	}
	return t.DefaultPriority
}
