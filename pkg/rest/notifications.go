package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/agrovia/notifykit/pkg/notification"
	"github.com/agrovia/notifykit/pkg/notifier"
)

// defaultSweepLimit bounds a sweep invocation when the caller does not
// pass ?limit=.
const defaultSweepLimit = 100

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %s", errBadRequest, err)
	}
	return nil
}

func (c *Controller) createAndSend(w http.ResponseWriter, r *http.Request) {
	var req notifier.SendRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	res, err := c.notifier.CreateAndSend(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	if res.Skipped {
		respondMessage(w, http.StatusOK, res, res.Reason)
		return
	}
	respond(w, http.StatusCreated, res)
}

func (c *Controller) sendBatch(w http.ResponseWriter, r *http.Request) {
	var reqs []notifier.SendRequest
	if err := decodeBody(r, &reqs); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, c.notifier.SendBatch(r.Context(), reqs))
}

func (c *Controller) getNotification(w http.ResponseWriter, r *http.Request) {
	n, err := c.notifier.GetNotificationByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, n)
}

func (c *Controller) listNotifications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := notification.ListOptions{
		Status:     notification.Status(q.Get("status")),
		Category:   q.Get("category"),
		Type:       q.Get("type"),
		Channel:    notification.Channel(q.Get("channel")),
		OnlyUnread: q.Get("unread") == "true",
		Limit:      intQuery(q.Get("limit"), 0),
		Offset:     intQuery(q.Get("offset"), 0),
	}

	list, total, err := c.notifier.GetUserNotifications(r.Context(), chi.URLParam(r, "userID"), opts)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{
		"notifications": list,
		"total":         total,
	})
}

func (c *Controller) countUnread(w http.ResponseWriter, r *http.Request) {
	count, err := c.notifier.CountUnread(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]int{"unread": count})
}

func (c *Controller) markRead(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []string `json:"ids"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, err)
		return
	}
	if err := c.notifier.MarkAsRead(r.Context(), chi.URLParam(r, "userID"), body.IDs...); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, nil)
}

func (c *Controller) markAllRead(w http.ResponseWriter, r *http.Request) {
	updated, err := c.notifier.MarkAllAsRead(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]int{"updated": updated})
}

func (c *Controller) archiveNotification(w http.ResponseWriter, r *http.Request) {
	err := c.notifier.ArchiveNotification(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, nil)
}

func (c *Controller) deleteNotification(w http.ResponseWriter, r *http.Request) {
	err := c.notifier.DeleteNotification(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, nil)
}

func (c *Controller) processScheduled(w http.ResponseWriter, r *http.Request) {
	result, err := c.notifier.ProcessScheduledNotifications(r.Context(),
		intQuery(r.URL.Query().Get("limit"), defaultSweepLimit))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, result)
}

func (c *Controller) processExpired(w http.ResponseWriter, r *http.Request) {
	result, err := c.notifier.ProcessExpiredNotifications(r.Context(),
		intQuery(r.URL.Query().Get("limit"), defaultSweepLimit))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, result)
}

func intQuery(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
