package session

import "time"

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithCapacity caps the number of sessions; the least recently used one is
// evicted to make room. Values <= 0 keep the default.
func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithTTL sets how long an untouched session survives a Sweep.
func WithTTL(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}
