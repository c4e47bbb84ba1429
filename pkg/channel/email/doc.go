// Package email delivers notifications over email channels.
//
// The adapter supports three backends, selected per channel config by
// its provider field: plain SMTP, Postmark, and Resend. Provider
// settings live in the channel's settings blob:
//
//   - smtp: host, port, username, password
//   - postmark: server_token, account_token
//   - resend: api_key
//
// All providers read the sender identity from "from_address" and
// "reply_to". Rendered email content supplies subject, HTML, and text
// bodies; notifications without email content fall back to the title
// and message.
//
// A recipient whose delivery frequency is not immediate gets a queued
// outcome and no send; batching those into digests happens elsewhere.
package email
