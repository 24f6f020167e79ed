// Package httpapi exposes the assistant's control surface: session
// start/stop, live status for UI polling, history access and
// operational endpoints.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/guychenya/giton/internal/capture"
	"github.com/guychenya/giton/internal/config"
	"github.com/guychenya/giton/internal/history"
	"github.com/guychenya/giton/internal/observability"
	"github.com/guychenya/giton/internal/tools"
	"github.com/guychenya/giton/internal/voice"
)

type Server struct {
	cfg       config.Config
	assistant *voice.Assistant
	registry  *tools.Registry
	manager   *history.Manager
	metrics   *observability.Metrics
}

func New(cfg config.Config, assistant *voice.Assistant, registry *tools.Registry, manager *history.Manager, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:       cfg,
		assistant: assistant,
		registry:  registry,
		manager:   manager,
		metrics:   metrics,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	if s.cfg.AllowAnyOrigin {
		r.Use(allowAnyOrigin)
	}

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, req)
	})

	r.Post("/v1/assistant/start", s.handleStart)
	r.Post("/v1/assistant/stop", s.handleStop)
	r.Get("/v1/assistant/status", s.handleStatus)
	r.Get("/v1/assistant/latency", s.handleLatency)
	r.Get("/v1/assistant/tools", s.handleTools)

	r.Get("/v1/history", s.handleHistory)
	r.Delete("/v1/history", s.handleClearHistory)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"state":  s.assistant.State(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if err := s.assistant.Start(r.Context()); err != nil {
		code := "connect_failed"
		status := http.StatusBadGateway
		if errors.Is(err, capture.ErrPermissionDenied) {
			code = "microphone_unavailable"
			status = http.StatusServiceUnavailable
		}
		respondError(w, status, code, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, s.assistant.Status())
}

func (s *Server) handleStop(w http.ResponseWriter, _ *http.Request) {
	s.assistant.Stop()
	respondJSON(w, http.StatusOK, s.assistant.Status())
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.assistant.Status())
}

func (s *Server) handleLatency(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.metrics.Latency.Snapshot())
}

func (s *Server) handleTools(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"tools": s.registry.Declarations(),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"messages": s.manager.Messages(),
	})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Clear(r.Context()); err != nil {
		respondError(w, http.StatusInternalServerError, "history_clear_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"messages": s.manager.Messages(),
	})
}

func allowAnyOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
