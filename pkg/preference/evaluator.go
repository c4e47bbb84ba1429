package preference

import (
	"context"
	"log/slog"
	"time"

	"github.com/agrovia/notifykit/pkg/notification"
)

// Request carries the attributes of a pending delivery that the
// evaluator resolves against a user's preference record.
type Request struct {
	Category string
	Type     string
	Template string
	Channel  notification.Channel
	Priority notification.Priority
}

// Evaluator decides whether a notification may be delivered to a user.
// Missing preference records and lookup failures resolve to allow, so a
// storage outage never silently drops notifications.
type Evaluator struct {
	store Store
	now   func() time.Time
	log   *slog.Logger
}

// EvaluatorOption configures an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithClock overrides the time source used for quiet hours evaluation.
func WithClock(now func() time.Time) EvaluatorOption {
	return EvaluatorOption(func(e *Evaluator) {
		e.now = now
	})
}

// WithLogger sets the logger used for evaluation failures.
func WithLogger(log *slog.Logger) EvaluatorOption {
	return EvaluatorOption(func(e *Evaluator) {
		e.log = log
	})
}

// NewEvaluator creates an Evaluator backed by the given preference store.
func NewEvaluator(store Store, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{
		store: store,
		now:   time.Now,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// IsEnabled reports whether delivery is allowed for the user and request.
// Resolution order, most specific wins: template override, type override,
// category override, channel enabled flag, global enabled flag. Quiet
// hours suppress any allowed delivery except urgent priority.
func (e *Evaluator) IsEnabled(ctx context.Context, userID string, req Request) bool {
	pref, err := e.store.Get(ctx, userID)
	if err != nil {
		e.log.WarnContext(ctx, "preference lookup failed, allowing delivery",
			slog.String("user_id", userID), slog.Any("error", err))
		return true
	}
	if !pref.Allows(req) {
		return false
	}
	if req.Priority != notification.PriorityUrgent && pref.InQuietHours(e.now()) {
		return false
	}
	return true
}

// Allows resolves the override chain for the request's channel without
// considering quiet hours.
func (p *Preference) Allows(req Request) bool {
	if req.Template != "" {
		if ov, ok := p.Templates[req.Template]; ok {
			if allowed, ok := ov.resolve(req.Channel); ok {
				return allowed
			}
		}
	}
	if req.Type != "" {
		if ov, ok := p.Types[req.Type]; ok {
			if allowed, ok := ov.resolve(req.Channel); ok {
				return allowed
			}
		}
	}
	if req.Category != "" {
		if ov, ok := p.Categories[req.Category]; ok {
			if allowed, ok := ov.resolve(req.Channel); ok {
				return allowed
			}
		}
	}
	if !p.ChannelEnabled(req.Channel) {
		return false
	}
	return p.Enabled
}

// resolve returns the override's decision for the channel, or ok=false
// when the override does not speak to this channel.
func (o Override) resolve(ch notification.Channel) (allowed, ok bool) {
	if v, exists := o.Channels[ch]; exists {
		return v, true
	}
	if o.Enabled != nil {
		return *o.Enabled, true
	}
	return false, false
}

// InQuietHours reports whether now falls inside the user's quiet hours
// window, evaluated in the configured timezone. Malformed configuration
// resolves to false.
func (p *Preference) InQuietHours(now time.Time) bool {
	qh := p.QuietHours
	if !qh.Enabled {
		return false
	}

	loc, err := time.LoadLocation(qh.Timezone)
	if err != nil {
		return false
	}
	local := now.In(loc)

	start, err := parseClock(qh.Start)
	if err != nil {
		return false
	}
	end, err := parseClock(qh.End)
	if err != nil {
		return false
	}

	cur := local.Hour()*60 + local.Minute()
	if start <= end {
		return cur >= start && cur < end
	}
	// Window wraps past midnight, e.g. 22:00-08:00.
	return cur >= start || cur < end
}

// parseClock converts "HH:MM" to minutes since midnight.
func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
