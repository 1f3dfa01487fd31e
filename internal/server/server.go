// Package server exposes the flowscope REST API.
//
// The API has two halves. POST /v1/render is stateless: it accepts a raw
// workflow payload and returns rendered artifacts in one round trip. The
// /v1/graphs routes persist captured payloads in the configured store and
// render them on demand, so a dashboard can browse executions it did not
// capture itself.
//
// Rendering always re-parses the stored payload. Artifacts are cached by
// content hash, not by graph ID, so re-capturing an identical payload under
// a new ID still hits the cache.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/flowscope/flowscope/internal/config"
	"github.com/flowscope/flowscope/pkg/errors"
	"github.com/flowscope/flowscope/pkg/observability"
	"github.com/flowscope/flowscope/pkg/pipeline"
	"github.com/flowscope/flowscope/pkg/store"
)

// Server wires the store, the render pipeline, and the HTTP routes.
type Server struct {
	cfg    config.Config
	store  store.Store
	runner *pipeline.Runner
	logger *log.Logger
}

// New creates a server. A nil logger falls back to the package default.
func New(cfg config.Config, st store.Store, runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		cfg:    cfg,
		store:  st,
		runner: runner,
		logger: logger,
	}
}

// Router builds the chi route tree with all middleware installed.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(s.recoverPanics)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/render", s.handleRender)

		r.Route("/graphs", func(r chi.Router) {
			r.Post("/", s.handleCreateGraph)
			r.Get("/", s.handleListGraphs)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetGraph)
				r.Delete("/", s.handleDeleteGraph)
				r.Get("/mermaid", s.handleGraphMermaid)
				r.Get("/flow", s.handleGraphFlow)
				r.Get("/svg", s.handleGraphSVG)
			})
		})
	})

	return r
}

// Run serves HTTP until ctx is canceled, then drains in-flight requests
// within the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:        s.cfg.Server.Addr,
		Handler:     s.Router(),
		ReadTimeout: s.cfg.Server.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(errors.ErrCodeInternal, err, "serve %s", s.cfg.Server.Addr)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", s.cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "shutdown")
	}
	return nil
}

// storeOp runs one store call and reports it to the store hooks with the
// configured backend name.
func (s *Server) storeOp(ctx context.Context, op string, fn func() error) error {
	start := time.Now()
	err := fn()
	observability.GraphStore().OnStoreOp(ctx, s.cfg.Store.Backend, op, time.Since(start), err)
	return err
}
