// Package notifier orchestrates the full notification delivery path:
// render content, evaluate recipient preferences, persist the record,
// dispatch it through the channel registry, and record the terminal
// lifecycle status.
//
// # Delivery path
//
// CreateAndSend validates a SendRequest, renders it (from a stored
// template or literal title and message), and asks the preference
// evaluator whether the recipient accepts it. A denial returns a
// skipped result and persists nothing. Accepted notifications are
// stored as pending, then dispatched immediately unless scheduled for
// the future. The Notifier is the only component that persists status
// transitions: adapters report a DeliveryOutcome and never touch the
// notification store, and delivery stats are recorded as an explicit
// step against whichever channel config the adapter resolved.
//
// In-app notifications are delivered the moment they are stored, so
// they move straight to delivered. Every other channel lands in sent
// on success or failed with the provider's error message.
//
// # Batches and sweeps
//
// SendBatch fans requests out over a bounded pool of goroutines with
// per-item isolation: one invalid request or failing provider never
// aborts the rest. ProcessScheduledNotifications dispatches pending
// notifications whose scheduled time has elapsed, rebuilding the
// rendered content persisted at creation. ProcessExpiredNotifications
// archives notifications past their expiry. Both sweeps are bounded by
// a limit per call and can deduplicate across processes through an
// optional Guard.
//
//	n := notifier.New(store, templates, prefs, registry,
//	    notifier.WithMetrics(notifier.NewMetrics(prometheus.DefaultRegisterer)),
//	)
//	res, err := n.CreateAndSend(ctx, notifier.SendRequest{
//	    UserID:   "u1",
//	    Type:     "order_shipped",
//	    Category: "orders",
//	    Template: "order-shipped",
//	    Channel:  notification.ChannelEmail,
//	    Data:     map[string]any{"order_id": "42"},
//	})
package notifier
