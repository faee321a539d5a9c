// Package server exposes drafts, scoring and flow descriptors over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/goliatone/go-intake/pkg/catalog"
	"github.com/goliatone/go-intake/pkg/draft"
	"github.com/goliatone/go-intake/pkg/report"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRequestTimeout bounds each request's context.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.timeout = d
	}
}

// WithReport sets the renderer behind ?format=text score responses.
func WithReport(r *report.Renderer) Option {
	return func(s *Server) {
		if r != nil {
			s.report = r
		}
	}
}

// Pinger is implemented by backends that can report their own health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server serves the intake API over a draft backend and a flow catalog.
type Server struct {
	backend  draft.Backend
	catalog  *catalog.Catalog
	contract *contract
	report   *report.Renderer
	logger   *zap.Logger
	timeout  time.Duration
}

// New validates the embedded API contract and returns a Server.
func New(ctx context.Context, backend draft.Backend, cat *catalog.Catalog, opts ...Option) (*Server, error) {
	if backend == nil {
		return nil, errors.New("server: draft backend is required")
	}
	if cat == nil {
		return nil, errors.New("server: catalog is required")
	}
	c, err := loadContract(ctx)
	if err != nil {
		return nil, err
	}

	s := &Server{
		backend:  backend,
		catalog:  cat,
		contract: c,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.report == nil {
		if s.report, err = report.New(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(recovery(s.logger))
	r.Use(requestLogger(s.logger))
	if s.timeout > 0 {
		r.Use(middleware.Timeout(s.timeout))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/openapi.yaml", s.handleContract)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/drafts", s.handleCreateDraft)
		r.Get("/drafts/{id}", s.handleGetDraft)
		r.Put("/drafts/{id}", s.handleReplaceDraft)

		r.Post("/score", s.handleScore)

		r.Get("/flows", s.handleListFlows)
		r.Get("/flows/{name}", s.handleGetFlow)
	})
	return r
}

// fail writes err as a JSON error, logging anything that is not a client error.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := mapError(err)
	if apiErr.Status >= http.StatusInternalServerError {
		s.logger.Error("request error",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeError(w, apiErr.Status, apiErr.Code, apiErr.Message, apiErr.Details)
}
