package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agrovia/notifykit/pkg/channel"
)

func (c *Controller) createChannel(w http.ResponseWriter, r *http.Request) {
	var cfg channel.Config
	if err := decodeBody(r, &cfg); err != nil {
		respondError(w, err)
		return
	}
	if err := c.registry.CreateChannel(r.Context(), cfg); err != nil {
		respondError(w, err)
		return
	}

	created, err := c.registry.Store().Get(r.Context(), cfg.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, created)
}

func (c *Controller) listChannels(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := c.registry.Store().List(r.Context(), channel.ListOptions{
		Type:   channel.Type(q.Get("type")),
		Status: channel.Status(q.Get("status")),
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, list)
}

func (c *Controller) getChannel(w http.ResponseWriter, r *http.Request) {
	cfg, err := c.registry.Store().Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, cfg)
}

func (c *Controller) updateChannel(w http.ResponseWriter, r *http.Request) {
	var cfg channel.Config
	if err := decodeBody(r, &cfg); err != nil {
		respondError(w, err)
		return
	}
	cfg.Name = chi.URLParam(r, "name")

	if err := c.registry.UpdateChannel(r.Context(), cfg); err != nil {
		respondError(w, err)
		return
	}

	updated, err := c.registry.Store().Get(r.Context(), cfg.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, updated)
}

func (c *Controller) deleteChannel(w http.ResponseWriter, r *http.Request) {
	if err := c.registry.DeleteChannel(r.Context(), chi.URLParam(r, "name")); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, nil)
}

// testChannel initializes the channel's adapter: success promotes the
// channel to active, failure records the error on the record. Either
// way the refreshed record is returned.
func (c *Controller) testChannel(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	testErr := c.registry.TestChannel(r.Context(), name)

	cfg, err := c.registry.Store().Get(r.Context(), name)
	if err != nil {
		respondError(w, err)
		return
	}
	if testErr != nil {
		respondMessage(w, http.StatusOK, cfg, testErr.Error())
		return
	}
	respond(w, http.StatusOK, cfg)
}

func (c *Controller) setDefaultChannel(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := c.registry.SetDefaultChannel(r.Context(), name); err != nil {
		respondError(w, err)
		return
	}

	cfg, err := c.registry.Store().Get(r.Context(), name)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, cfg)
}

func (c *Controller) channelStats(w http.ResponseWriter, r *http.Request) {
	cfg, err := c.registry.Store().Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, cfg.Stats)
}
