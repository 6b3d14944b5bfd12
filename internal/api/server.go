package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/docmark/internal/config"
	"github.com/dgallion1/docmark/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for docmark.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
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
		r.Use(AuthMiddleware(s.cfg.DocmarkAPIKey, s.log))

		r.Post("/api/parse", s.handleParse)
		r.Get("/api/stats", s.handleStats)

		r.Post("/api/projects", s.handleUpload)
		r.Post("/api/projects/batch", s.handleBatchUpload)
		r.Get("/api/projects/jobs/{jobID}/status", s.handleJobStatus)

		r.Get("/api/projects/{projectID}", s.handleGetProject)
		r.Get("/api/projects/{projectID}/documents", s.handleGetDocuments)
		r.Get("/api/projects/{projectID}/attachments/{name}", s.handleGetAttachment)
		r.Delete("/api/projects/{projectID}", s.handleDeleteProject)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
