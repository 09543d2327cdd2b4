package web

import (
	"net/http"
	"strings"

	"github.com/hpungsan/linkgrab/internal/errors"
	"github.com/hpungsan/linkgrab/internal/session"
	"github.com/hpungsan/linkgrab/internal/view"
)

// Handlers contains HTTP route handlers for the link panel.
type Handlers struct {
	store    *session.Store
	renderer *Renderer
}

// HandleIndex handles GET /: restore the panel from persisted state.
func (h *Handlers) HandleIndex(w http.ResponseWriter, r *http.Request) {
	m := view.NewModel()
	if err := h.store.LoadState(r.Context(), m); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.renderer.renderPanel(w, r, http.StatusOK, m)
}

// HandleFetch handles POST /fetch: fetch the submitted URL and show its links.
func (h *Handlers) HandleFetch(w http.ResponseWriter, r *http.Request) {
	raw := r.FormValue("url")

	m := view.NewModel()
	m.SetInput(strings.TrimSpace(raw))

	_, err := h.store.FetchAndStore(r.Context(), m, raw)
	switch {
	case err == nil:
		h.renderer.renderPanel(w, r, http.StatusOK, m)

	case errors.Is(err, errors.ErrInvalidRequest):
		// Nothing changed: show the current panel under the alert
		restored := view.NewModel()
		if loadErr := h.store.LoadState(r.Context(), restored); loadErr != nil {
			h.renderer.renderError(w, r, loadErr)
			return
		}
		restored.Alerts = m.Alerts
		h.renderer.renderPanel(w, r, http.StatusBadRequest, restored)

	case errors.Is(err, errors.ErrFetchInProgress):
		h.renderer.renderError(w, r, err)

	default:
		// The indicator already carries the failure message
		h.renderer.renderPanel(w, r, errors.As(err).Status, m)
	}
}

// HandleClear handles POST /clear: wipe persisted state and reset the panel.
func (h *Handlers) HandleClear(w http.ResponseWriter, r *http.Request) {
	m := view.NewModel()
	if err := h.store.ClearAll(r.Context(), m); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.renderer.renderPanel(w, r, http.StatusOK, m)
}

// HandleState handles GET /api/state: the persisted record as JSON.
func (h *Handlers) HandleState(w http.ResponseWriter, r *http.Request) {
	state, err := h.store.Snapshot(r.Context())
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, state)
}
