package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rmello/clamtap/internal/findings"
	"github.com/rmello/clamtap/internal/inspect"
)

// Engine exposes the inspection engine counters to the API.
type Engine interface {
	Stats() inspect.Stats
}

// Handlers holds dependencies for the REST API handlers.
type Handlers struct {
	Store  *findings.Store
	Engine Engine
}

// NewHandlers creates API handlers with the given dependencies.
func NewHandlers(store *findings.Store, engine Engine) *Handlers {
	return &Handlers{Store: store, Engine: engine}
}

// ListFindings handles GET /api/v1/findings. An optional ?category=
// query parameter filters by category.
func (h *Handlers) ListFindings(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	writeJSON(w, http.StatusOK, h.Store.List(category))
}

// GetFinding handles GET /api/v1/findings/{id}.
func (h *Handlers) GetFinding(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	f, err := h.Store.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// GetStatus handles GET /api/v1/status with engine counters.
func (h *Handlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Engine.Stats())
}
