// Package sms delivers notifications over SMS channels.
//
// Two backends are supported, selected per channel config by its
// provider field: Twilio and a generic JSON-over-HTTP gateway for
// regional aggregators. Provider settings live in the channel's
// settings blob:
//
//   - twilio: account_sid, auth_token
//   - http: url, api_key (optional)
//
// Both read the sender number from "from_number". Message bodies are
// truncated to a single 160-character segment; the notification title
// is prefixed only when the body does not already contain it.
package sms
