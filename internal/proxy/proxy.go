// Package proxy runs the HTTP traffic source: a reverse proxy in front
// of a configured upstream whose responses are handed to the inspection
// engine. The tap copies the raw body bytes off the wire and passes the
// response through to the client unchanged.
package proxy

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/rmello/clamtap/pkg/types"
)

// Inspector receives every proxied exchange. Implementations must not
// block; the engine's coordinator dispatches asynchronously.
type Inspector interface {
	OnResponse(ctx context.Context, ex types.Exchange)
}

// Server is the tapping reverse proxy.
type Server struct {
	router    chi.Router
	addr      string
	upstream  *url.URL
	inspector Inspector
	log       zerolog.Logger

	httpSrv *http.Server
	nextID  atomic.Uint64
}

// NewServer builds a proxy listening on addr that forwards to upstream.
func NewServer(addr, upstream string, inspector Inspector, log zerolog.Logger) (*Server, error) {
	target, err := url.Parse(upstream)
	if err != nil {
		return nil, fmt.Errorf("parsing upstream URL %q: %w", upstream, err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("upstream URL %q must include scheme and host", upstream)
	}

	s := &Server{
		router:    chi.NewRouter(),
		addr:      addr,
		upstream:  target,
		inspector: inspector,
		log:       log,
	}

	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)

	rp := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
		},
		ModifyResponse: s.tap,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			s.log.Warn().Err(err).Str("path", r.URL.Path).Msg("upstream request failed")
			w.WriteHeader(http.StatusBadGateway)
		},
	}
	s.router.Handle("/*", rp)

	return s, nil
}

// tap captures the response body and hands the exchange to the
// inspector. The body is restored so the client sees it untouched.
func (s *Server) tap(resp *http.Response) error {
	if resp.Request == nil {
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading upstream body: %w", err)
	}
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))

	ex := types.Exchange{
		Method:     resp.Request.Method,
		StatusCode: resp.StatusCode,
		URL:        resp.Request.URL.String(),
		Body:       body,
		ID:         strconv.FormatUint(s.nextID.Add(1), 10),
	}
	s.inspector.OnResponse(resp.Request.Context(), ex)
	return nil
}

// Router exposes the chi.Router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Start begins listening on the configured address and blocks until the
// server stops.
func (s *Server) Start() error {
	s.httpSrv = &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info().Str("addr", s.addr).Str("upstream", s.upstream.String()).Msg("proxy tap listening")
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the proxy.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}
