// Package loadgen drives simulated visitors through the user app's JSON API
// and checks the feedback backend received what the app reported as sent.
package loadgen

import (
	"runtime"
	"time"
)

// Defaults for Config fields left zero.
const (
	defaultVisitors    = 100
	defaultTimeout     = 15 * time.Second
	defaultCommentRate = 0.5
)

// Config holds configuration for a simulation run.
type Config struct {
	TargetURL   string        // Base URL of the user app
	BackendURL  string        // Base URL of the dev backend; empty skips verification
	Visitors    int           // Number of simulated visitors
	Workers     int           // Concurrent visitors
	Timeout     time.Duration // Per-request timeout
	Locations   []string      // Location identifiers to spread visitors over
	CommentRate float64       // Fraction of visitors leaving a comment
	Seed        uint64        // Generator seed; equal seeds give equal visits
}

func (c Config) withDefaults() Config {
	if c.Visitors <= 0 {
		c.Visitors = defaultVisitors
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU() * 2
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if len(c.Locations) == 0 {
		c.Locations = []string{"coffee-shop", "bakery", "front-desk", "gym"}
	}
	if c.CommentRate < 0 || c.CommentRate > 1 {
		c.CommentRate = defaultCommentRate
	}
	return c
}

// Visit is one simulated visitor's intent.
type Visit struct {
	LocationID string
	Rating     int
	Comment    string
}

// Stats summarises a run.
type Stats struct {
	Visitors  int
	Succeeded int
	Failed    int // the app showed the error state
	Errored   int // transport or unexpected status talking to the app
	ByRating  map[int]int
	Verified  bool
	StartTime time.Time
	Duration  time.Duration
}
