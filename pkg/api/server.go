package api

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/riskflow/pkg/pipeline"
	"github.com/matzehuels/riskflow/pkg/session"
	"github.com/matzehuels/riskflow/pkg/store"
)

// Defaults for Config.
const (
	DefaultAddr         = ":8090"
	DefaultMaxBodyBytes = 8 << 20
)

// Config wires a Server to its dependencies.
type Config struct {
	Addr string

	Sessions *session.Manager

	// Store persists snapshots. Snapshot routes answer 501 when nil.
	Store store.Store

	// Runner serves /v1/analyze. A runner without caching is used when nil.
	Runner *pipeline.Runner

	Logger *log.Logger

	// Metrics serves /metrics. Defaults to promhttp.Handler().
	Metrics http.Handler

	MaxBodyBytes int64
}

// Server is the HTTP API.
type Server struct {
	sessions *session.Manager
	store    store.Store
	runner   *pipeline.Runner
	logger   *log.Logger
	maxBody  int64

	router *chi.Mux
	server *http.Server
}

// New creates a server. Config.Sessions must be set.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.Metrics == nil {
		cfg.Metrics = promhttp.Handler()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	s := &Server{
		sessions: cfg.Sessions,
		store:    cfg.Store,
		runner:   cfg.Runner,
		logger:   cfg.Logger,
		maxBody:  cfg.MaxBodyBytes,
	}
	s.router = s.routes(cfg.Metrics)
	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

func (s *Server) routes(metrics http.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.withLogging)
	r.Use(withInstrumentation)
	r.Use(s.withRecovery)
	r.Use(withSecureHeaders)

	r.Handle("/metrics", metrics)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", handleHealth)
		r.Post("/analyze", s.handleAnalyze)

		r.Route("/graphs", func(r chi.Router) {
			r.Get("/", s.handleListGraphs)
			r.Post("/", s.handleCreateGraph)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetGraph)
				r.Delete("/", s.handleDeleteGraph)

				r.Post("/vertices", s.handleAddVertices)
				r.Get("/vertices/{vertex}", s.handleGetVertex)
				r.Patch("/vertices/{vertex}", s.handlePatchVertex)
				r.Delete("/vertices/{vertex}", s.handleDeleteVertex)

				r.Put("/edges", s.handleSetEdges)
				r.Get("/edges/{from}/{to}", s.handleGetEdge)
				r.Delete("/edges/{from}/{to}", s.handleClearEdge)

				r.Get("/risk", s.handleRisk)
				r.Post("/analyze", s.handleAnalyzeGraph)
				r.Post("/snapshots", s.handleSaveSnapshot)
			})
		})

		r.Route("/snapshots", func(r chi.Router) {
			r.Get("/", s.handleListSnapshots)
			r.Get("/{sid}", s.handleGetSnapshot)
			r.Post("/{sid}/load", s.handleLoadSnapshot)
			r.Delete("/{sid}", s.handleDeleteSnapshot)
		})
	})

	return r
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errc
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
