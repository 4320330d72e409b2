package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aretw0/patchbay/internal/logging"
	"github.com/aretw0/patchbay/pkg/adapters/websocket"
	"github.com/aretw0/patchbay/pkg/analysis"
	"github.com/aretw0/patchbay/pkg/backend"
	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/library"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes a Hub and its patch library over HTTP.
type Server struct {
	Hub      *backend.Hub
	Library  *library.Manager
	Upgrader *websocket.Upgrader
	Version  string

	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithGatherer serves the metrics of g on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithUpgrader replaces the websocket upgrader used on /socket.
func WithUpgrader(u *websocket.Upgrader) Option {
	return func(s *Server) {
		s.Upgrader = u
	}
}

// WithVersion sets the version reported by /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.Version = v
	}
}

// NewHandler creates the HTTP handler for hub and lib.
func NewHandler(hub *backend.Hub, lib *library.Manager, opts ...Option) http.Handler {
	s := &Server{
		Hub:      hub,
		Library:  lib,
		Upgrader: websocket.NewUpgrader(nil),
		Version:  "dev",
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/socket", s.Socket)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/sessions", s.ListSessions)
	r.Route("/patches", func(r chi.Router) {
		r.Get("/", s.ListPatches)
		r.Get("/{name}", s.GetPatch)
		r.Get("/{name}/report", s.GetReport)
		r.Delete("/{name}", s.DeletePatch)
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Socket upgrades the request and serves an editor until it goes away.
func (s *Server) Socket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.Upgrader.Upgrade(w, r)
	if err != nil {
		s.logger.Warn("Socket: upgrade failed", "error", err)
		return
	}
	if err := s.Hub.Serve(r.Context(), conn); err != nil {
		s.logger.Warn("Socket: connection lost", "error", err)
	}
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]any{
		"app":      "patchbay",
		"version":  s.Version,
		"sessions": len(s.Hub.Sessions()),
	})
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.Hub.Sessions())
}

// ListPatches handles the GET /patches request.
func (s *Server) ListPatches(w http.ResponseWriter, r *http.Request) {
	names, err := s.Library.List(r.Context())
	if err != nil {
		s.fail(w, "ListPatches", err)
		return
	}
	if names == nil {
		names = []string{}
	}
	s.writeJSON(w, names)
}

// GetPatch handles the GET /patches/{name} request.
func (s *Server) GetPatch(w http.ResponseWriter, r *http.Request) {
	patch, err := s.Library.Load(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, "GetPatch", err)
		return
	}
	s.writeJSON(w, patch)
}

// GetReport handles the GET /patches/{name}/report request.
func (s *Server) GetReport(w http.ResponseWriter, r *http.Request) {
	patch, err := s.Library.Load(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, "GetReport", err)
		return
	}
	s.writeJSON(w, analysis.Analyze(patch))
}

// DeletePatch handles the DELETE /patches/{name} request.
func (s *Server) DeletePatch(w http.ResponseWriter, r *http.Request) {
	if err := s.Library.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.fail(w, "DeletePatch", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidPatchName):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrPatchNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
		s.logger.Error(op+" failed", "error", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "error", err)
	}
}
