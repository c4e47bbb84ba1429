// Package webhook delivers notifications to user-configured HTTP
// endpoints.
//
// Endpoints come from the recipient's preferences, each with an
// optional shared secret and a list of event subscriptions. Events are
// named "category.type"; a subscription list may use "*" to match
// everything or "category.*" to match a whole category, and an empty
// list subscribes to everything.
//
// The channel config supplies the transport: request timeout, retry
// parameters (max_attempts, initial_delay_ms, backoff_factor), and
// outbound auth headers (bearer token or basic credentials). Each
// endpoint is attempted through the retry policy; network failures and
// retryable HTTP statuses are retried with exponential backoff, other
// responses fail immediately.
//
// Deliveries carrying a secret are signed with HMAC-SHA256 over
// "timestamp.payload" and announced through the X-Webhook-Signature,
// X-Webhook-Timestamp, and X-Webhook-ID headers. Consumers validate
// with VerifySignature.
package webhook
