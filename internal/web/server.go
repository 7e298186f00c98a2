// Package web serves the findings REST API.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/rmello/clamtap/internal/findings"
	"github.com/rmello/clamtap/internal/web/api"
)

// Server is the HTTP server for the clamtap API.
type Server struct {
	router chi.Router
	addr   string
	store  *findings.Store
	engine api.Engine
	log    zerolog.Logger

	httpSrv *http.Server
}

// NewServer builds a new Server with middleware and routes configured.
func NewServer(addr string, store *findings.Store, engine api.Engine, log zerolog.Logger) *Server {
	s := &Server{
		router: chi.NewRouter(),
		addr:   addr,
		store:  store,
		engine: engine,
		log:    log,
	}

	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.registerRoutes()

	return s
}

// Start begins listening on the configured address and blocks until the
// server stops.
func (s *Server) Start() error {
	s.httpSrv = &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info().Str("addr", s.addr).Msg("API server listening")
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// Router exposes the chi.Router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}
