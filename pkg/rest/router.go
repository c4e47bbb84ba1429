package rest

import (
	"errors"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/agrovia/notifykit/pkg/channel"
	"github.com/agrovia/notifykit/pkg/notifier"
)

// errBadRequest wraps request decoding problems so they map to 400.
var errBadRequest = errors.New("bad request")

// Controller is the thin HTTP layer over the notifier and the channel
// admin surface. It holds no state of its own.
type Controller struct {
	notifier *notifier.Notifier
	registry *channel.Registry
	log      *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger for request diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// NewController wires the notifier and registry into HTTP handlers.
func NewController(n *notifier.Notifier, registry *channel.Registry, opts ...Option) *Controller {
	c := &Controller{notifier: n, registry: registry, log: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Router mounts the full API surface:
//
//	POST   /notifications                       create and send
//	POST   /notifications/batch                 batch send
//	GET    /notifications/{id}                  get by id
//	GET    /users/{userID}/notifications        list with filters
//	GET    /users/{userID}/notifications/unread-count
//	POST   /users/{userID}/notifications/read   mark ids read
//	POST   /users/{userID}/notifications/read-all
//	POST   /users/{userID}/notifications/{id}/archive
//	DELETE /users/{userID}/notifications/{id}
//	POST   /sweeps/scheduled                    dispatch due notifications
//	POST   /sweeps/expired                      archive expired notifications
//	POST   /channels                            create channel (starts testing)
//	GET    /channels                            list channels
//	GET    /channels/{name}                     get channel
//	PUT    /channels/{name}                     update channel
//	DELETE /channels/{name}                     delete channel
//	POST   /channels/{name}/test                init adapter, promote or record error
//	POST   /channels/{name}/default             set as type default
//	GET    /channels/{name}/stats               delivery stats
func (c *Controller) Router() chi.Router {
	r := chi.NewRouter()

	r.Route("/notifications", func(r chi.Router) {
		r.Post("/", c.createAndSend)
		r.Post("/batch", c.sendBatch)
		r.Get("/{id}", c.getNotification)
	})

	r.Route("/users/{userID}/notifications", func(r chi.Router) {
		r.Get("/", c.listNotifications)
		r.Get("/unread-count", c.countUnread)
		r.Post("/read", c.markRead)
		r.Post("/read-all", c.markAllRead)
		r.Post("/{id}/archive", c.archiveNotification)
		r.Delete("/{id}", c.deleteNotification)
	})

	r.Route("/sweeps", func(r chi.Router) {
		r.Post("/scheduled", c.processScheduled)
		r.Post("/expired", c.processExpired)
	})

	r.Route("/channels", func(r chi.Router) {
		r.Post("/", c.createChannel)
		r.Get("/", c.listChannels)
		r.Get("/{name}", c.getChannel)
		r.Put("/{name}", c.updateChannel)
		r.Delete("/{name}", c.deleteChannel)
		r.Post("/{name}/test", c.testChannel)
		r.Post("/{name}/default", c.setDefaultChannel)
		r.Get("/{name}/stats", c.channelStats)
	})

	return r
}
