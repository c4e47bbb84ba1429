// Package notification defines the core notification record, its delivery
// lifecycle state machine, and the Store interface used by the
// orchestrator, together with an in-memory implementation.
//
// The lifecycle is strictly monotonic:
//
//	pending → {sent → delivered, failed}
//	{sent, delivered, failed} → read
//	any non-archived state → archived
//
// Store implementations route every status change through the state
// machine so a notification can never move backward, and archived is
// always terminal. Database-backed implementations live in pkg/postgres
// and pkg/mongodb.
package notification
