// Package api exposes the feedback form as JSON plus the health, stats and
// metrics endpoints.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/harkwise/userapp/internal/adapters/http/middleware"
	"github.com/harkwise/userapp/internal/adapters/http/visitor"
	"github.com/harkwise/userapp/internal/domain/form"
	"github.com/harkwise/userapp/pkg/logger"
	"github.com/harkwise/userapp/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Forms resolves the visitor's form for a location.
type Forms interface {
	Form(ctx context.Context, sessionID, locationID string) (*form.Controller, error)
}

// Server wires HTTP routes for the JSON API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	formsHandler  *FormsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(forms Forms, statsProvider StatsProvider, cookies visitor.Cookies, l logger.Logger) *Server {
	if l == nil {
		l = logger.Nop()
	}
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		formsHandler:  NewFormsHandler(forms, cookies, l),
	}
}

// Register attaches all API routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.HandleFunc("GET /healthz", middleware.Metrics("healthz", s.healthHandler.HandleHealth))
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /stats", middleware.Metrics("stats", s.statsHandler.HandleStats))

	// The id-less prefix serves the empty location identifier.
	for _, prefix := range []string{"/api/v1/forms/{locationId}", "/api/v1/form"} {
		mux.HandleFunc("GET "+prefix, middleware.Metrics("form", s.formsHandler.HandleGet))
		mux.HandleFunc("POST "+prefix+"/rating", middleware.Metrics("form_rating", s.formsHandler.HandleRating))
		mux.HandleFunc("POST "+prefix+"/comment", middleware.Metrics("form_comment", s.formsHandler.HandleComment))
		mux.HandleFunc("POST "+prefix+"/submit", middleware.Metrics("form_submit", s.formsHandler.HandleSubmit))
		mux.HandleFunc("POST "+prefix+"/reset", middleware.Metrics("form_reset", s.formsHandler.HandleReset))
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// formResponse carries the form snapshot and, on rejected calls, the reason.
type formResponse struct {
	Form  form.View      `json:"form"`
	Error *errorResponse `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func writeForm(w http.ResponseWriter, status int, v form.View) {
	writeJSON(w, status, formResponse{Form: v})
}

func writeFormError(w http.ResponseWriter, status int, code, msg string, v form.View) {
	writeJSON(w, status, formResponse{Form: v, Error: &errorResponse{Code: code, Message: msg}})
}
