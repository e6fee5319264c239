// Package server exposes the rate-limited bindings over HTTP, standing in for
// a browser page that posts its input and pointer events.
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/romdo/go-ratefn/internal/api"
)

// Runner executes f on the goroutine that owns the bindings. An
// *eventloop.Loop is a Runner.
type Runner interface {
	Do(ctx context.Context, f func()) error
}

// Server serves the bindings over HTTP. Every binding call is run through
// the Runner.
type Server struct {
	router *chi.Mux
	runner Runner
	bind   *api.Bindings
	client *api.Client
	logger zerolog.Logger
}

// New returns a Server with the routes and middleware registered.
func New(
	runner Runner,
	bind *api.Bindings,
	client *api.Client,
	logger zerolog.Logger,
) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	s := &Server{
		router: r,
		runner: runner,
		bind:   bind,
		client: client,
		logger: logger,
	}
	s.registerRoutes()

	return s
}

// Handler exposes the underlying router for testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on bind until ctx is done, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, bind string) error {
	srv := &http.Server{
		Addr:              bind,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info().Str("bind", bind).Msg("webserver starting")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return errors.Wrap(err, "webserver failed")
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down webserver")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return errors.Wrap(srv.Shutdown(shutdownCtx), "webserver shutdown")
}

// requestLogger logs every request with zerolog once it has been served.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Debug().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}
