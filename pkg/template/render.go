package template

import (
	"fmt"
	"strings"

	"github.com/agrovia/notifykit/pkg/notification"
)

// RenderedContent is the channel-ready output of rendering a template.
// The channel-specific sub-object is populated only for the channel that
// was requested.
type RenderedContent struct {
	Title    string                `json:"title"`
	Message  string                `json:"message"`
	Type     string                `json:"type"`
	Category string                `json:"category"`
	Priority notification.Priority `json:"priority"`
	Actions  []notification.Action `json:"actions,omitempty"`

	Email   *RenderedEmail   `json:"email,omitempty"`
	SMS     *RenderedSMS     `json:"sms,omitempty"`
	Push    *RenderedPush    `json:"push,omitempty"`
	Webhook *RenderedWebhook `json:"webhook,omitempty"`
}

// RenderedEmail is the email-specific rendering result. Fields fall back
// to title/message when the template declares no email overrides.
type RenderedEmail struct {
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body"`
	TextBody string `json:"text_body"`
}

// RenderedSMS is the SMS-specific rendering result.
type RenderedSMS struct {
	Text string `json:"text"`
}

// RenderedPush is the push-specific rendering result.
type RenderedPush struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// RenderedWebhook is the webhook-specific rendering result.
type RenderedWebhook struct {
	Payload map[string]any `json:"payload"`
}

// ValidationResult reports missing required variables. It is advisory:
// callers decide whether to abort on invalid input.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ValidateVariables checks that every variable marked required is
// present in the supplied map. A declared default satisfies the
// requirement.
func ValidateVariables(tpl Template, vars map[string]any) ValidationResult {
	result := ValidationResult{Valid: true}
	for _, v := range tpl.Variables {
		if !v.Required || v.Default != "" {
			continue
		}
		if _, ok := vars[v.Name]; !ok {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("missing required variable %q", v.Name))
		}
	}
	return result
}

// Render substitutes {{name}} placeholders in the template's content for
// the requested channel. Substitution is lenient: placeholders with no
// supplied value and no declared default pass through verbatim, so
// rendering never fails and is idempotent under re-render with the same
// inputs.
func Render(tpl Template, vars map[string]any, channel notification.Channel) RenderedContent {
	sub := newSubstituter(tpl, vars)

	content := RenderedContent{
		Title:    sub.apply(tpl.TitleTemplate),
		Message:  sub.apply(tpl.MessageTemplate),
		Type:     tpl.Type,
		Category: tpl.Category,
		Priority: tpl.Priority(),
	}

	for _, action := range tpl.DefaultActions {
		action.Text = sub.apply(action.Text)
		action.URL = sub.apply(action.URL)
		content.Actions = append(content.Actions, action)
	}

	switch channel {
	case notification.ChannelEmail:
		email := RenderedEmail{
			Subject:  content.Title,
			HTMLBody: content.Message,
			TextBody: content.Message,
		}
		if tpl.Email != nil {
			if tpl.Email.Subject != "" {
				email.Subject = sub.apply(tpl.Email.Subject)
			}
			if tpl.Email.HTMLBody != "" {
				email.HTMLBody = sub.apply(tpl.Email.HTMLBody)
			}
			if tpl.Email.TextBody != "" {
				email.TextBody = sub.apply(tpl.Email.TextBody)
			}
		}
		content.Email = &email

	case notification.ChannelSMS:
		sms := RenderedSMS{Text: content.Message}
		if tpl.SMS != nil && tpl.SMS.Text != "" {
			sms.Text = sub.apply(tpl.SMS.Text)
		}
		content.SMS = &sms

	case notification.ChannelPush:
		push := RenderedPush{Title: content.Title, Body: content.Message}
		if tpl.Push != nil {
			if tpl.Push.Title != "" {
				push.Title = sub.apply(tpl.Push.Title)
			}
			if tpl.Push.Body != "" {
				push.Body = sub.apply(tpl.Push.Body)
			}
		}
		content.Push = &push

	case notification.ChannelWebhook:
		webhook := RenderedWebhook{}
		if tpl.Webhook != nil && tpl.Webhook.Payload != nil {
			webhook.Payload, _ = sub.applyValue(tpl.Webhook.Payload).(map[string]any)
		} else {
			// No declared shape: deliver the rendered core fields.
			webhook.Payload = map[string]any{
				"title":    content.Title,
				"message":  content.Message,
				"type":     content.Type,
				"category": content.Category,
			}
		}
		content.Webhook = &webhook
	}

	return content
}

// substituter performs literal {{name}} substring replacement. Declared
// defaults are merged in below supplied values.
type substituter struct {
	values map[string]string
}

func newSubstituter(tpl Template, vars map[string]any) *substituter {
	values := make(map[string]string, len(vars)+len(tpl.Variables))
	for _, v := range tpl.Variables {
		if v.Default != "" {
			values[v.Name] = v.Default
		}
	}
	for name, value := range vars {
		values[name] = fmt.Sprint(value)
	}
	return &substituter{values: values}
}

func (s *substituter) apply(text string) string {
	if text == "" || !strings.Contains(text, "{{") {
		return text
	}
	for name, value := range s.values {
		text = strings.ReplaceAll(text, "{{"+name+"}}", value)
	}
	return text
}

// applyValue walks an arbitrary payload shape, substituting only string
// leaves. Arrays and nested objects recurse; other leaf types pass
// through unchanged.
func (s *substituter) applyValue(value any) any {
	switch v := value.(type) {
	case string:
		return s.apply(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = s.applyValue(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = s.applyValue(item)
		}
		return out
	default:
		return v
	}
}
