// Package channel manages delivery channel configurations and routes
// notifications to channel adapters.
//
// A channel Config is an administrator-managed instance of a transport,
// e.g. "primary-postmark" (email via Postmark) or "twilio-prod" (SMS via
// Twilio). Configs carry a provider identifier, a provider-specific
// settings blob, an operational status, tags, and cumulative delivery
// stats. At most one channel per type carries the "default" tag; the
// store clears it from same-type siblings before setting it.
//
// # Adapters
//
// An Adapter delivers over one channel type. Adapters return a
// DeliveryOutcome instead of an error: the orchestrator must always get
// a terminal result it can record against the notification, whether the
// transport succeeded, failed, or deferred the delivery.
//
// Adapter implementations live in the subpackages email, sms, push, and
// webhook. They embed a Clients cache that lazily builds provider
// clients per channel config and resolves which channel a delivery
// uses: an explicit channel name, else the default-tagged active
// channel, else the first active channel of the type.
//
// # Registry
//
// The Registry ties adapters and the channel store together. It routes
// deliveries by type, and exposes the admin surface: creating channels
// (which start in testing status), testing them (Init promotes to
// active or records the error), updating, deleting, and selecting the
// per-type default.
//
//	store := channel.NewMemoryStore()
//	reg := channel.NewRegistry(store)
//	reg.Register(email.NewAdapter(store))
//
//	outcome := reg.Dispatch(ctx, channel.TypeEmail, channel.Delivery{
//	    Notification: notif,
//	    Content:      rendered,
//	    Settings:     settings,
//	})
//
// Adapters record each attempt against the channel they resolved, so
// stats stay accurate even when the channel was chosen lazily.
package channel
