package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dgallion1/docedit/internal/approval"
	"github.com/dgallion1/docedit/internal/config"
	"github.com/dgallion1/docedit/internal/llm"
	"github.com/dgallion1/docedit/internal/tools"
)

// Deps are the collaborators the HTTP API serves.
type Deps struct {
	Runner   *approval.Runner
	Gateway  *tools.Gateway
	Sessions tools.Sessions
	Blobs    tools.Blobs
	Policy   approval.Policy
	Pending  approval.Store
	Stats    *llm.Stats
	Model    string
}

// pinger is implemented by pending stores backed by a remote service.
type pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP API server for docedit.
type Server struct {
	router chi.Router
	deps   Deps
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(deps Deps, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		deps: deps,
		log:  log,
		cfg:  cfg,
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
	r.Handle("/metrics", promhttp.Handler())

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/conversations", s.handleStartConversation)
		r.Post("/api/approvals/{token}", s.handleResolveApproval)

		r.Post("/api/tools/{name}", s.handleRunTool)

		r.Get("/api/documents/index", s.handleDocumentIndex)
		r.Post("/api/documents", s.handleUploadDocument)

		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.deps.Pending.(pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			s.log.Warn("health check failed", "component", "pending_store", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":        "degraded",
				"pending_store": err.Error(),
			})
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
