package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrovia/notifykit/pkg/notification"
)

func welcomeTemplate() Template {
	return Template{
		Name:            "welcome",
		Type:            "account-created",
		Category:        "account",
		TitleTemplate:   "Welcome to Agrovia, {{name}}!",
		MessageTemplate: "Hi {{name}}, your {{plan}} account is ready.",
		DefaultPriority: notification.PriorityNormal,
		Email: &EmailContent{
			Subject:  "Welcome aboard, {{name}}",
			HTMLBody: "<h1>Hello {{name}}</h1><p>Your {{plan}} account is ready.</p>",
		},
		DefaultActions: []notification.Action{
			{Name: "open", Text: "Open dashboard", URL: "https://app.agrovia.example/u/{{name}}", Primary: true},
		},
		Variables: []Variable{
			{Name: "name", Required: true},
			{Name: "plan", Default: "starter"},
		},
	}
}

func TestRender_SubstitutesVariables(t *testing.T) {
	t.Parallel()

	content := Render(welcomeTemplate(), map[string]any{"name": "Asha"}, notification.ChannelEmail)

	assert.Equal(t, "Welcome to Agrovia, Asha!", content.Title)
	assert.Equal(t, "Hi Asha, your starter account is ready.", content.Message)
	assert.NotContains(t, content.Title, "{{")
	assert.NotContains(t, content.Message, "{{")

	require.NotNil(t, content.Email)
	assert.Equal(t, "Welcome aboard, Asha", content.Email.Subject)
	assert.Equal(t, "<h1>Hello Asha</h1><p>Your starter account is ready.</p>", content.Email.HTMLBody)

	require.Len(t, content.Actions, 1)
	assert.Equal(t, "https://app.agrovia.example/u/Asha", content.Actions[0].URL)

	assert.Nil(t, content.SMS)
	assert.Nil(t, content.Push)
	assert.Nil(t, content.Webhook)
}

func TestRender_LenientOnMissingVariables(t *testing.T) {
	t.Parallel()

	tpl := welcomeTemplate()
	content := Render(tpl, map[string]any{}, notification.ChannelInApp)

	// Missing required variable stays verbatim; declared default fills in.
	assert.Equal(t, "Welcome to Agrovia, {{name}}!", content.Title)
	assert.Contains(t, content.Message, "{{name}}")
	assert.Contains(t, content.Message, "starter")

	// Re-rendering the output with the same inputs changes nothing.
	again := Render(tpl, map[string]any{}, notification.ChannelInApp)
	assert.Equal(t, content.Title, again.Title)
	assert.Equal(t, content.Message, again.Message)
}

func TestRender_EmailFallsBackToTitleMessage(t *testing.T) {
	t.Parallel()

	tpl := welcomeTemplate()
	tpl.Email = nil

	content := Render(tpl, map[string]any{"name": "Asha"}, notification.ChannelEmail)

	require.NotNil(t, content.Email)
	assert.Equal(t, content.Title, content.Email.Subject)
	assert.Equal(t, content.Message, content.Email.HTMLBody)
	assert.Equal(t, content.Message, content.Email.TextBody)
}

func TestRender_SMSAndPushOverrides(t *testing.T) {
	t.Parallel()

	tpl := welcomeTemplate()
	tpl.SMS = &SMSContent{Text: "Agrovia: welcome {{name}}"}
	tpl.Push = &PushContent{Title: "Welcome {{name}}", Body: "Tap to open your dashboard"}

	sms := Render(tpl, map[string]any{"name": "Asha"}, notification.ChannelSMS)
	require.NotNil(t, sms.SMS)
	assert.Equal(t, "Agrovia: welcome Asha", sms.SMS.Text)

	push := Render(tpl, map[string]any{"name": "Asha"}, notification.ChannelPush)
	require.NotNil(t, push.Push)
	assert.Equal(t, "Welcome Asha", push.Push.Title)
	assert.Equal(t, "Tap to open your dashboard", push.Push.Body)
}

func TestRender_WebhookPayloadRecursion(t *testing.T) {
	t.Parallel()

	tpl := welcomeTemplate()
	tpl.Webhook = &WebhookContent{
		Payload: map[string]any{
			"event": "user.{{name}}.created",
			"user": map[string]any{
				"name": "{{name}}",
				"tags": []any{"{{plan}}", 42, []any{"nested-{{name}}"}},
			},
			"count": 7,
		},
	}

	content := Render(tpl, map[string]any{"name": "asha"}, notification.ChannelWebhook)
	require.NotNil(t, content.Webhook)

	payload := content.Webhook.Payload
	assert.Equal(t, "user.asha.created", payload["event"])
	assert.Equal(t, 7, payload["count"])

	user := payload["user"].(map[string]any)
	assert.Equal(t, "asha", user["name"])

	tags := user["tags"].([]any)
	assert.Equal(t, "starter", tags[0])
	assert.Equal(t, 42, tags[1])
	assert.Equal(t, []any{"nested-asha"}, tags[2])

	// The source template's shape must not be mutated.
	original := tpl.Webhook.Payload["user"].(map[string]any)
	assert.Equal(t, "{{name}}", original["name"])
}

func TestRender_WebhookDefaultPayload(t *testing.T) {
	t.Parallel()

	tpl := welcomeTemplate()
	content := Render(tpl, map[string]any{"name": "Asha"}, notification.ChannelWebhook)

	require.NotNil(t, content.Webhook)
	assert.Equal(t, "Welcome to Agrovia, Asha!", content.Webhook.Payload["title"])
	assert.Equal(t, "account-created", content.Webhook.Payload["type"])
	assert.Equal(t, "account", content.Webhook.Payload["category"])
}

func TestValidateVariables(t *testing.T) {
	t.Parallel()

	tpl := welcomeTemplate()

	valid := ValidateVariables(tpl, map[string]any{"name": "Asha"})
	assert.True(t, valid.Valid)
	assert.Empty(t, valid.Errors)

	invalid := ValidateVariables(tpl, map[string]any{})
	assert.False(t, invalid.Valid)
	require.Len(t, invalid.Errors, 1)
	assert.Contains(t, invalid.Errors[0], "name")

	// A required variable with a declared default is satisfied.
	tpl.Variables = []Variable{{Name: "plan", Required: true, Default: "starter"}}
	withDefault := ValidateVariables(tpl, map[string]any{})
	assert.True(t, withDefault.Valid)
}
