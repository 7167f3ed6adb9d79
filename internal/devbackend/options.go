package devbackend

import (
	"time"

	"github.com/harkwise/userapp/pkg/logger"
)

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithFailRate makes the given fraction of requests answer 503. Values are clamped to [0, 1].
func WithFailRate(rate float64) Option {
	return func(s *Server) {
		s.failRate = min(max(rate, 0), 1)
	}
}

// WithLatency delays every response.
func WithLatency(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.latency = d
		}
	}
}

// WithRoll overrides the random source deciding injected failures.
func WithRoll(roll func() float64) Option {
	return func(s *Server) {
		if roll != nil {
			s.roll = roll
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}
