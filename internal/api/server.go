package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dgallion1/paperdigest/internal/backend"
	"github.com/dgallion1/paperdigest/internal/config"
	"github.com/dgallion1/paperdigest/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for paperdigest.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	backends     *backend.Set
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, backends *backend.Set, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		backends:     backends,
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
		r.Use(AuthMiddleware(s.cfg.PaperdigestAPIKey, s.log))

		r.Get("/api/models", s.handleModels)
		r.Get("/api/stats/llm", s.handleLLMStats)

		r.Post("/api/papers", s.handleUpload)
		r.Route("/api/papers/{jobID}", func(r chi.Router) {
			r.Get("/status", s.handleStatus)
			r.Get("/sections", s.handleSections)
			r.Get("/summary", s.handleSummary)
			r.Get("/summary.txt", s.handleSummaryText)
			r.Post("/ask", s.handleAsk)
		})
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":      "ok",
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}
