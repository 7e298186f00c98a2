package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rmello/clamtap/internal/web/api"
)

// registerRoutes mounts all route groups on the server's router.
func (s *Server) registerRoutes() {
	apiHandlers := api.NewHandlers(s.store, s.engine)

	// Health check
	s.router.Get("/health", s.handleHealth)

	// REST API
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/findings", apiHandlers.ListFindings)
		r.Get("/findings/{id}", apiHandlers.GetFinding)
		r.Get("/status", apiHandlers.GetStatus)
	})
}

// handleHealth returns a simple health check response including the
// scanning daemon's resolved state.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"daemon": s.engine.Stats().Daemon,
	})
}
