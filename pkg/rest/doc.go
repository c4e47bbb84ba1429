// Package rest exposes the notifier and the channel admin surface over
// HTTP as a mountable chi router. Every endpoint answers with the same
// JSON envelope:
//
//	{"success": true,  "data": ...}
//	{"success": false, "error": "..."}
//
// Validation failures map to 400, unknown ids to 404, duplicate channel
// names and illegal lifecycle moves to 409, everything else to 500.
// Delivery failures are not request failures: intake succeeded, so the
// response is 201 and the failure is visible in the notification's own
// status and error message.
//
//	ctrl := rest.NewController(n, registry)
//	r := chi.NewRouter()
//	r.Mount("/api/v1", ctrl.Router())
package rest
