// Package server exposes the converter over HTTP.
//
// Routes:
//
//	POST /convert        {"code": "...", "toLang": "c|cpp|java"}
//	GET  /targets        target names and conventions
//	GET  /history        recent conversions (when a history store is set)
//	GET  /history/{id}   one recorded conversion
//	GET  /healthz        liveness
//
// A conversion that fails is still a well-formed request: it answers 422
// with the structured error. Malformed bodies answer 400.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"goa.design/clue/debug"
	"goa.design/clue/log"

	"github.com/roach88/pyxlate/internal/codegen"
	"github.com/roach88/pyxlate/internal/convert"
	"github.com/roach88/pyxlate/internal/history"
)

// MaxBodyBytes bounds the size of a request body.
const MaxBodyBytes = 1 << 20

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 30 * time.Second

// Server serves conversions. It is safe for concurrent use.
type Server struct {
	pipeline      *convert.Pipeline
	history       *history.Store
	defaultTarget codegen.Target
	debug         bool
	now           func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithPipeline sets the conversion pipeline.
func WithPipeline(p *convert.Pipeline) Option {
	return func(s *Server) { s.pipeline = p }
}

// WithHistory records every conversion in st and mounts the history routes.
func WithHistory(st *history.Store) Option {
	return func(s *Server) { s.history = st }
}

// WithDefaultTarget sets the target used when a request names none.
func WithDefaultTarget(t codegen.Target) Option {
	return func(s *Server) { s.defaultTarget = t }
}

// WithDebug logs request and response bodies when debug logs are enabled.
func WithDebug(enabled bool) Option {
	return func(s *Server) { s.debug = enabled }
}

// WithClock sets the time source for history records.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New returns a server with the default pipeline and target c.
func New(opts ...Option) *Server {
	s := &Server{
		pipeline:      convert.NewPipeline(),
		defaultTarget: codegen.TargetC,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routes wrapped in the access log middleware. logCtx
// carries the logger used for access entries.
func (s *Server) Handler(logCtx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /convert", s.handleConvert)
	mux.HandleFunc("GET /targets", s.handleTargets)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.history != nil {
		mux.HandleFunc("GET /history", s.handleHistoryList)
		mux.HandleFunc("GET /history/{id}", s.handleHistoryGet)
	}

	var handler http.Handler = mux
	if s.debug {
		handler = debug.HTTP()(handler)
	}
	return log.HTTP(logCtx)(handler)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(ctx),
		ReadHeaderTimeout: 60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf(ctx, "HTTP server listening on %q", ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.Printf(ctx, "shutting down HTTP server at %q", ln.Addr().String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
