// Package server serves mirrored metadata over HTTP.
//
// Every document route answers with a {data, error} envelope:
//
//	GET /raw/mojang                         version manifest
//	GET /raw/mojang/{version}               version document
//	GET /raw/forge/maven                    maven-metadata listing
//	GET /raw/forge/promotions               promotions
//	GET /raw/forge/index                    derived index
//	GET /raw/forge/{version}                embedded version.json
//	GET /raw/forge/{version}/meta           files manifest
//	GET /raw/forge/{version}/installer      installer profile
//
// plus /health and /metrics. Documents are served as stored; nothing is
// fetched or derived at request time.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/PrismLauncher/mcmeta/pkg/storage"
)

const shutdownTimeout = 30 * time.Second

// Options configures a Server.
type Options struct {
	Logger *log.Logger
	// Gatherer backs /metrics. Nil uses the default registry.
	Gatherer prometheus.Gatherer
}

// Server is the read-through HTTP front of a store.
type Server struct {
	store    storage.Store
	logger   *log.Logger
	gatherer prometheus.Gatherer
}

// New returns a server reading from store.
func New(store storage.Store, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	return &Server{store: store, logger: opts.Logger, gatherer: opts.Gatherer}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(logging(s.logger))

	r.Get("/health", s.health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/raw", func(r chi.Router) {
		r.Route("/mojang", func(r chi.Router) {
			r.Get("/", s.document(mojangManifest))
			r.Get("/{version}", s.version(mojangVersion))
		})
		r.Route("/forge", func(r chi.Router) {
			r.Get("/maven", s.document(forgeMaven))
			r.Get("/promotions", s.document(forgePromotions))
			r.Get("/index", s.document(forgeIndex))
			r.Get("/{version}", s.version(forgeVersionManifest))
			r.Get("/{version}/meta", s.version(forgeFilesManifest))
			r.Get("/{version}/installer", s.version(forgeInstallerManifest))
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
