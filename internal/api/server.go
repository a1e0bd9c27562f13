package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/docdistill/internal/config"
	"github.com/dgallion1/docdistill/internal/extract"
	"github.com/dgallion1/docdistill/internal/pipeline"
)

// Server is the HTTP API server for docdistill.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	provider     extract.Provider
	stats        *extract.LLMStats
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, provider extract.Provider, stats *extract.LLMStats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		provider:     provider,
		stats:        stats,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.DistillAPIKey, s.log))

		r.Post("/api/extract", s.handleExtract)
		r.Get("/api/extract/{jobID}/status", s.handleExtractStatus)
		r.Post("/api/extract/batch", s.handleBatchExtract)
		r.Get("/api/stats/llm", s.handleLLMStats)

		r.Get("/api/artifacts", s.handleListArtifacts)
		r.Get("/api/artifacts/{docID}", s.handleGetArtifact)
		r.Delete("/api/artifacts/{docID}", s.handleDeleteArtifact)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
