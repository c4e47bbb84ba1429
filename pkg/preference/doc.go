// Package preference stores and evaluates per-user notification
// delivery preferences.
//
// Each user has at most one Preference record, created lazily with
// defaults on first access. The record carries a global enable flag,
// a quiet-hours window, per-channel settings (including contact details
// such as email address, phone number, push tokens, and webhook
// endpoints), and override maps keyed by category, type, and template
// name.
//
// # Evaluation
//
// The Evaluator answers a single question: may this notification reach
// this user over this channel? Resolution walks from most to least
// specific:
//
//   - template override
//   - type override
//   - category override
//   - channel enabled flag
//   - global enabled flag
//
// An override only participates when it speaks to the requested channel,
// either through its channel map or its enabled flag. Quiet hours are
// applied after the override chain and never suppress urgent deliveries.
//
// # Fail-Open Lookups
//
// A failed preference lookup resolves to allow. Users who have never
// configured preferences, and storage outages, must not silently drop
// notifications.
//
// # Basic Usage
//
//	store := preference.NewMemoryStore()
//	eval := preference.NewEvaluator(store)
//
//	allowed := eval.IsEnabled(ctx, "user123", preference.Request{
//	    Category: "orders",
//	    Type:     "order_shipped",
//	    Channel:  notification.ChannelEmail,
//	    Priority: notification.PriorityNormal,
//	})
package preference
