package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/agrovia/notifykit/pkg/channel"
	"github.com/agrovia/notifykit/pkg/logger"
	"github.com/agrovia/notifykit/pkg/notification"
	"github.com/agrovia/notifykit/pkg/preference"
	"github.com/agrovia/notifykit/pkg/template"
)

// SendRequest describes one notification to create and deliver. Either
// Template or the literal Title/Message pair must be supplied; template
// content wins when both are present.
type SendRequest struct {
	UserID   string         `json:"user_id"`
	Type     string         `json:"type"`
	Category string         `json:"category"`
	Title    string         `json:"title,omitempty"`
	Message  string         `json:"message,omitempty"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`

	// Channel defaults to in-app. ChannelName pins a specific channel
	// config; when empty the adapter picks the default-tagged one.
	Channel     notification.Channel `json:"channel,omitempty"`
	ChannelName string               `json:"channel_name,omitempty"`

	// Priority overrides the template's default when set.
	Priority notification.Priority `json:"priority,omitempty"`

	Actions      []notification.Action `json:"actions,omitempty"`
	ScheduledFor *time.Time            `json:"scheduled_for,omitempty"`
	ExpiresAt    *time.Time            `json:"expires_at,omitempty"`
	Metadata     notification.Metadata `json:"metadata,omitzero"`
}

// Result is the outcome of CreateAndSend. Skipped results carry no
// persisted notification; everything else carries the record in its
// terminal state for this call.
type Result struct {
	Notification *notification.Notification `json:"notification,omitempty"`
	Skipped      bool                       `json:"skipped,omitempty"`
	Reason       string                     `json:"reason,omitempty"`
	Outcome      channel.DeliveryOutcome    `json:"outcome,omitzero"`
}

// Notifier orchestrates the full delivery path: render, evaluate
// preferences, persist, dispatch, and record the terminal status. It is
// the only component that persists lifecycle transitions; adapters
// report outcomes and never touch the notification store.
type Notifier struct {
	notifications notification.Store
	templates     template.Store
	preferences   preference.Store
	evaluator     *preference.Evaluator
	registry      *channel.Registry
	guard         Guard
	metrics       *Metrics
	log           *slog.Logger
	now           func() time.Time
	concurrency   int
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithLogger sets the logger used for dispatch diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(n *Notifier) { n.log = log }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(n *Notifier) { n.now = now }
}

// WithGuard enables cross-process sweep deduplication.
func WithGuard(g Guard) Option {
	return func(n *Notifier) { n.guard = g }
}

// WithMetrics enables prometheus delivery metrics.
func WithMetrics(m *Metrics) Option {
	return func(n *Notifier) { n.metrics = m }
}

// WithConcurrency bounds how many dispatches run at once inside
// SendBatch and the scheduled sweep. Defaults to 8.
func WithConcurrency(limit int) Option {
	return func(n *Notifier) {
		if limit > 0 {
			n.concurrency = limit
		}
	}
}

// New builds a Notifier over the given stores and channel registry.
func New(notifications notification.Store, templates template.Store, preferences preference.Store, registry *channel.Registry, opts ...Option) *Notifier {
	n := &Notifier{
		notifications: notifications,
		templates:     templates,
		preferences:   preferences,
		registry:      registry,
		log:           slog.Default(),
		now:           time.Now,
		concurrency:   8,
	}
	for _, opt := range opts {
		opt(n)
	}
	n.evaluator = preference.NewEvaluator(preferences,
		preference.WithClock(n.now),
		preference.WithLogger(n.log),
	)
	return n
}

// CreateAndSend validates the request, renders content, checks the
// recipient's preferences, persists the notification, and dispatches it
// unless it is scheduled for the future. Preference denial returns a
// skipped result without persisting anything. Delivery failure is not
// an error: the notification lands in status failed and the outcome
// carries the provider's message.
func (n *Notifier) CreateAndSend(ctx context.Context, req SendRequest) (*Result, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	ch := req.Channel
	if ch == "" {
		ch = notification.ChannelInApp
	}

	content, tplName, err := n.render(ctx, req, ch)
	if err != nil {
		return nil, err
	}

	priority := content.Priority
	if req.Priority != "" {
		priority = req.Priority
	}

	allowed := n.evaluator.IsEnabled(ctx, req.UserID, preference.Request{
		Category: req.Category,
		Type:     req.Type,
		Template: tplName,
		Channel:  ch,
		Priority: priority,
	})
	if !allowed {
		n.log.InfoContext(ctx, "notification suppressed by preferences",
			logger.UserID(req.UserID), logger.Channel(string(ch)), "type", req.Type)
		n.metrics.recordDelivery(string(ch), "skipped", 0)
		return &Result{Skipped: true, Reason: "suppressed by user preferences"}, nil
	}

	now := n.now().UTC()
	record := notification.Notification{
		ID:           uuid.NewString(),
		UserID:       req.UserID,
		Type:         req.Type,
		Category:     req.Category,
		Title:        content.Title,
		Message:      content.Message,
		Data:         contentData(content, ch),
		Priority:     priority,
		Channel:      ch,
		Template:     tplName,
		Actions:      content.Actions,
		Status:       notification.StatusPending,
		ScheduledFor: req.ScheduledFor,
		ExpiresAt:    req.ExpiresAt,
		IsActive:     true,
		Metadata:     req.Metadata,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := n.notifications.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}

	if record.IsScheduled() {
		return &Result{Notification: &record}, nil
	}

	outcome := n.dispatch(ctx, record, content, req.ChannelName)
	final, err := n.notifications.Get(ctx, record.ID)
	if err != nil {
		final = &record
	}
	return &Result{Notification: final, Outcome: outcome}, nil
}

func (req SendRequest) validate() error {
	switch {
	case req.UserID == "":
		return ErrMissingRecipient
	case req.Type == "":
		return ErrMissingType
	case req.Category == "":
		return ErrMissingCategory
	}
	if req.Channel != "" && !req.Channel.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidChannel, req.Channel)
	}
	if req.Priority != "" && !req.Priority.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, req.Priority)
	}
	if req.Template == "" && (req.Title == "" || req.Message == "") {
		return ErrMissingContent
	}
	return nil
}

// render produces channel-ready content, either from a stored template
// or from the request's literal title and message. Literal content runs
// through the same renderer so variable substitution and the
// channel-specific fallbacks behave identically on both paths.
func (n *Notifier) render(ctx context.Context, req SendRequest, ch notification.Channel) (template.RenderedContent, string, error) {
	if req.Template == "" {
		tpl := template.Template{
			Type:            req.Type,
			Category:        req.Category,
			TitleTemplate:   req.Title,
			MessageTemplate: req.Message,
			DefaultPriority: req.Priority,
		}
		return template.Render(tpl, req.Data, ch), "", nil
	}

	tpl, err := n.templates.Get(ctx, req.Template)
	if err != nil {
		return template.RenderedContent{}, "", fmt.Errorf("resolve template %q: %w", req.Template, err)
	}
	if result := template.ValidateVariables(*tpl, req.Data); !result.Valid {
		// Advisory only: rendering is lenient and leaves unresolved
		// placeholders verbatim.
		n.log.WarnContext(ctx, "template variables incomplete",
			logger.Template(tpl.Name), "missing", result.Errors)
	}
	return template.Render(*tpl, req.Data, ch), tpl.Name, nil
}

// dispatch delivers one pending notification and persists its terminal
// status. In-app delivery is synchronous by definition; every other
// channel goes through the registry's adapter, and stats are recorded
// against whichever channel config the adapter resolved.
func (n *Notifier) dispatch(ctx context.Context, record notification.Notification, content template.RenderedContent, channelName string) channel.DeliveryOutcome {
	started := n.now()

	var outcome channel.DeliveryOutcome
	if record.Channel == notification.ChannelInApp {
		outcome = channel.DeliveryOutcome{Success: true, Delivered: true}
	} else {
		settings := n.deliverySettings(ctx, record.UserID, record.Channel)
		outcome = n.registry.Dispatch(ctx, channel.Type(record.Channel), channel.Delivery{
			Notification: record,
			Content:      content,
			Settings:     settings,
			ChannelName:  channelName,
		})
		outcome = n.registry.RecordAttempt(ctx, outcome.Channel, outcome)
	}

	n.metrics.recordDelivery(string(record.Channel), outcomeResult(outcome), n.now().Sub(started))
	n.persistOutcome(ctx, record, outcome)
	return outcome
}

// deliverySettings resolves the recipient's contact details for the
// channel. A store failure yields empty settings; the adapter then
// fails the delivery with a precise missing-destination error.
func (n *Notifier) deliverySettings(ctx context.Context, userID string, ch notification.Channel) preference.DeliverySettings {
	pref, err := n.preferences.Get(ctx, userID)
	if err != nil {
		n.log.WarnContext(ctx, "loading delivery settings failed",
			logger.UserID(userID), logger.Error(err))
		return preference.DeliverySettings{}
	}
	return pref.DeliverySettings(ch)
}

// persistOutcome moves the notification to its terminal status for this
// attempt. Queued outcomes leave it pending: delivery was deferred, not
// attempted.
func (n *Notifier) persistOutcome(ctx context.Context, record notification.Notification, outcome channel.DeliveryOutcome) {
	switch {
	case outcome.Queued:
		return
	case outcome.Success:
		if err := n.notifications.UpdateStatus(ctx, record.ID, notification.StatusSent, ""); err != nil {
			n.log.ErrorContext(ctx, "marking notification sent failed",
				logger.NotificationID(record.ID), logger.Error(err))
			return
		}
		if outcome.Delivered {
			if err := n.notifications.UpdateStatus(ctx, record.ID, notification.StatusDelivered, ""); err != nil {
				n.log.ErrorContext(ctx, "marking notification delivered failed",
					logger.NotificationID(record.ID), logger.Error(err))
			}
		}
	default:
		if err := n.notifications.UpdateStatus(ctx, record.ID, notification.StatusFailed, outcome.Error); err != nil {
			n.log.ErrorContext(ctx, "marking notification failed failed",
				logger.NotificationID(record.ID), logger.Error(err))
		}
	}
}

func outcomeResult(outcome channel.DeliveryOutcome) string {
	switch {
	case outcome.Queued:
		return "queued"
	case outcome.Delivered:
		return "delivered"
	case outcome.Success:
		return "sent"
	default:
		return "failed"
	}
}

// contentData extracts the channel-specific rendering into the
// notification's Data map so the scheduled sweep can dispatch later
// without re-rendering.
func contentData(content template.RenderedContent, ch notification.Channel) map[string]map[string]any {
	var payload map[string]any
	switch ch {
	case notification.ChannelEmail:
		if content.Email != nil {
			payload = map[string]any{
				"subject":   content.Email.Subject,
				"html_body": content.Email.HTMLBody,
				"text_body": content.Email.TextBody,
			}
		}
	case notification.ChannelSMS:
		if content.SMS != nil {
			payload = map[string]any{"text": content.SMS.Text}
		}
	case notification.ChannelPush:
		if content.Push != nil {
			payload = map[string]any{
				"title": content.Push.Title,
				"body":  content.Push.Body,
			}
		}
	case notification.ChannelWebhook:
		if content.Webhook != nil {
			payload = map[string]any{"payload": content.Webhook.Payload}
		}
	}
	if payload == nil {
		return nil
	}
	return map[string]map[string]any{string(ch): payload}
}

// renderedContent rebuilds channel-ready content from a persisted
// notification, the inverse of contentData.
func renderedContent(record notification.Notification) template.RenderedContent {
	content := template.RenderedContent{
		Title:    record.Title,
		Message:  record.Message,
		Type:     record.Type,
		Category: record.Category,
		Priority: record.Priority,
		Actions:  record.Actions,
	}
	data := record.Data[string(record.Channel)]
	if data == nil {
		return content
	}
	switch record.Channel {
	case notification.ChannelEmail:
		content.Email = &template.RenderedEmail{
			Subject:  stringValue(data, "subject"),
			HTMLBody: stringValue(data, "html_body"),
			TextBody: stringValue(data, "text_body"),
		}
	case notification.ChannelSMS:
		content.SMS = &template.RenderedSMS{Text: stringValue(data, "text")}
	case notification.ChannelPush:
		content.Push = &template.RenderedPush{
			Title: stringValue(data, "title"),
			Body:  stringValue(data, "body"),
		}
	case notification.ChannelWebhook:
		payload, _ := data["payload"].(map[string]any)
		content.Webhook = &template.RenderedWebhook{Payload: payload}
	}
	return content
}

func stringValue(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
