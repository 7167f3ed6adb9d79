// Package devbackend is a local stand-in for the feedback backend. It
// validates and tallies payloads and can be told to fail or lag so the user
// app's error handling can be exercised end to end.
package devbackend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/rand/v2"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harkwise/userapp/internal/adapters/http/middleware"
	"github.com/harkwise/userapp/internal/domain/feedback"
	"github.com/harkwise/userapp/pkg/logger"
)

const maxBodyBytes = 8 << 10

// Receipt acknowledges a stored payload.
type Receipt struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

// Stats tallies what the backend has seen.
type Stats struct {
	Received     int            `json:"received"`
	Rejected     int            `json:"rejected"`
	Failed       int            `json:"failed"`
	WithComment  int            `json:"withComment"`
	ByRating     map[string]int `json:"byRating"`
	ByLocationID map[string]int `json:"byLocationId"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Server accepts feedback payloads.
type Server struct {
	mu    sync.Mutex
	stats Stats

	failRate float64
	latency  time.Duration
	roll     func() float64
	logger   logger.Logger
}

// New creates a server.
func New(opts ...Option) *Server {
	s := &Server{
		roll:   rand.Float64,
		logger: logger.Nop(),
		stats: Stats{
			ByRating:     make(map[string]int),
			ByLocationID: make(map[string]int),
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches the backend routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("POST "+feedback.SubmitPath, middleware.Metrics("devbackend_feedback", s.HandleFeedback))
	mux.HandleFunc("GET /stats", s.HandleStats)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

// HandleFeedback handles POST /api/v1/feedback.
func (s *Server) HandleFeedback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.latency > 0 {
		select {
		case <-time.After(s.latency):
		case <-ctx.Done():
			return
		}
	}

	if s.failRate > 0 && s.roll() < s.failRate {
		s.mu.Lock()
		s.stats.Failed++
		s.mu.Unlock()
		s.logger.Warn(ctx, "injected failure")
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Code: "unavailable", Message: "injected failure"})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.reject(ctx, w, http.StatusBadRequest, "bad_request", err)
		return
	}
	p, err := feedback.DecodePayload(body)
	if err != nil {
		s.reject(ctx, w, http.StatusUnprocessableEntity, "invalid_payload", err)
		return
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.stats.Received++
	s.stats.ByRating[strconv.Itoa(p.Rating)]++
	s.stats.ByLocationID[p.LocationID]++
	if p.Comment != "" {
		s.stats.WithComment++
	}
	s.mu.Unlock()

	s.logger.Info(ctx, "feedback received",
		logger.String("id", id),
		logger.String("location_id", p.LocationID),
		logger.Int("rating", p.Rating),
		logger.Bool("has_comment", p.Comment != ""),
		logger.String("submitted_at", p.SubmittedAt),
	)
	writeJSON(w, http.StatusCreated, Receipt{Status: "received", ID: id})
}

// HandleStats handles GET /stats.
func (s *Server) HandleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Stats())
}

// Stats returns a copy of the tallies.
func (s *Server) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.stats
	out.ByRating = make(map[string]int, len(s.stats.ByRating))
	for k, v := range s.stats.ByRating {
		out.ByRating[k] = v
	}
	out.ByLocationID = make(map[string]int, len(s.stats.ByLocationID))
	for k, v := range s.stats.ByLocationID {
		out.ByLocationID[k] = v
	}
	return out
}

func (s *Server) reject(ctx context.Context, w http.ResponseWriter, status int, code string, err error) {
	s.mu.Lock()
	s.stats.Rejected++
	s.mu.Unlock()

	s.logger.Warn(ctx, "payload rejected", logger.Error(err))
	msg := err.Error()
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		msg = "body too large"
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
