package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/agrovia/notifykit/pkg/channel"
	"github.com/agrovia/notifykit/pkg/notification"
	"github.com/agrovia/notifykit/pkg/notifier"
	"github.com/agrovia/notifykit/pkg/template"
)

// Response is the uniform JSON envelope for every endpoint.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func respond(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Response{Success: true, Data: data})
}

func respondMessage(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, Response{Success: true, Data: data, Message: message})
}

func respondError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), Response{Success: false, Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// statusFor maps domain errors onto HTTP statuses: validation failures
// are 400, unknown ids 404, duplicates and illegal lifecycle moves 409,
// anything else 500.
func statusFor(err error) int {
	switch {
	case isValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, notification.ErrNotFound),
		errors.Is(err, channel.ErrNotFound),
		errors.Is(err, template.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, channel.ErrAlreadyExists),
		errors.Is(err, notification.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		notifier.ErrMissingRecipient,
		notifier.ErrMissingType,
		notifier.ErrMissingCategory,
		notifier.ErrMissingContent,
		notifier.ErrInvalidChannel,
		notifier.ErrInvalidPriority,
		channel.ErrMissingName,
		channel.ErrInvalidType,
		channel.ErrInvalidStatus,
		channel.ErrNoAdapter,
		errBadRequest,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
