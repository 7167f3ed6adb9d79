// Package service wires the session store and the backend poster into the
// form lookups used by the HTTP adapters.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/harkwise/userapp/internal/adapters/session"
	"github.com/harkwise/userapp/internal/domain/form"
	"github.com/harkwise/userapp/pkg/logger"
)

// Service owns per-visitor form state for the whole process.
type Service struct {
	mu sync.RWMutex

	store  *session.Store
	poster form.Poster

	// Configuration
	sessionCapacity int
	sessionTTL      time.Duration
	sweepInterval   time.Duration
	clock           func() time.Time

	// State
	started bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithPoster sets the backend collaborator used by every form.
func WithPoster(p form.Poster) Option {
	return func(s *Service) {
		if p != nil {
			s.poster = p
		}
	}
}

// WithSessionCapacity caps in-memory sessions.
func WithSessionCapacity(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.sessionCapacity = n
		}
	}
}

// WithSessionTTL sets the idle lifetime of a session.
func WithSessionTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sessionTTL = d
		}
	}
}

// WithSweepInterval sets how often idle sessions are swept.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sweepInterval = d
		}
	}
}

// WithClock overrides the clock for session ageing and payload timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.clock = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		sessionCapacity: 10_000,
		sessionTTL:      30 * time.Minute,
		sweepInterval:   time.Minute,
		clock:           time.Now,
		logger:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates the session store and launches the idle-session sweeper.
// The sweeper stops on Stop or when ctx is done.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.poster == nil {
		return ErrNoPoster
	}

	s.store = session.New(
		session.WithCapacity(s.sessionCapacity),
		session.WithTTL(s.sessionTTL),
		session.WithClock(s.clock),
	)
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	go s.sweepLoop(ctx, s.stopCh, s.doneCh)

	s.started = true
	s.logger.Info(ctx, "feedback service started",
		logger.Int("sessionCapacity", s.sessionCapacity),
		logger.Duration("sessionTTL", s.sessionTTL),
		logger.Duration("sweepInterval", s.sweepInterval),
	)
	return nil
}

// Stop halts the sweeper and waits for it to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	close(s.stopCh)
	done := s.doneCh
	s.started = false
	s.mu.Unlock()

	<-done
	s.logger.Info(context.Background(), "feedback service stopped")
}

// Form returns the visitor's form for locationID. A visitor arriving at a
// different location than before gets a fresh form.
func (s *Service) Form(ctx context.Context, sessionID, locationID string) (*form.Controller, error) {
	const op = "service.form"

	s.mu.RLock()
	store, started := s.store, s.started
	s.mu.RUnlock()
	if !started {
		return nil, fmt.Errorf("%s: %w", op, ErrNotStarted)
	}

	c, err := store.Acquire(sessionID, locationID, s.newForm)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

func (s *Service) newForm(locationID string) *form.Controller {
	return form.New(locationID, s.poster,
		form.WithClock(s.clock),
		form.WithLogger(s.logger.Named("form")),
	)
}

// Sweep drops idle sessions now.
func (s *Service) Sweep(ctx context.Context) int {
	s.mu.RLock()
	store := s.store
	s.mu.RUnlock()
	if store == nil {
		return 0
	}
	removed := store.Sweep()
	if removed > 0 {
		s.logger.Debug(ctx, "swept idle sessions", logger.Int("removed", removed))
	}
	return removed
}

func (s *Service) sweepLoop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":         s.started,
		"sessionCapacity": s.sessionCapacity,
		"sessionTTL":      s.sessionTTL.String(),
	}
	if s.store != nil {
		stats["sessions"] = s.store.Len()
	}
	return stats
}
