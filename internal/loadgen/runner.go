package loadgen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/harkwise/userapp/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Sentinel errors.
var (
	ErrConfig   = errors.New("invalid simulation config")
	ErrMismatch = errors.New("backend tally does not match submissions")
)

type outcome int

type step struct {
	method string
	path   string
	body   any
}

const (
	outcomeSucceeded outcome = iota
	outcomeFailed
	outcomeErrored
)

// Run simulates cfg.Visitors visitors and, when BackendURL is set, verifies
// that the backend received exactly the successful submissions.
func Run(ctx context.Context, cfg Config, l logger.Logger) (Stats, error) {
	cfg = cfg.withDefaults()
	if cfg.TargetURL == "" {
		return Stats{}, fmt.Errorf("%w: target url is required", ErrConfig)
	}
	if l == nil {
		l = logger.Nop()
	}

	stats := Stats{Visitors: cfg.Visitors, ByRating: make(map[int]int), StartTime: time.Now()}
	l.Info(ctx, "starting simulation",
		logger.String("target", cfg.TargetURL),
		logger.Int("visitors", cfg.Visitors),
		logger.Int("workers", cfg.Workers),
	)

	var before backendStats
	if cfg.BackendURL != "" {
		var err error
		if before, err = fetchBackendStats(ctx, cfg); err != nil {
			return stats, err
		}
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, v := range GenerateVisits(cfg) {
		g.Go(func() error {
			res := visit(gctx, cfg, v, l)
			mu.Lock()
			defer mu.Unlock()
			switch res {
			case outcomeSucceeded:
				stats.Succeeded++
				stats.ByRating[v.Rating]++
			case outcomeFailed:
				stats.Failed++
			default:
				stats.Errored++
			}
			return nil
		})
	}
	_ = g.Wait()
	stats.Duration = time.Since(stats.StartTime)
	if err := ctx.Err(); err != nil {
		return stats, err
	}

	l.Info(ctx, "simulation finished",
		logger.Int("succeeded", stats.Succeeded),
		logger.Int("failed", stats.Failed),
		logger.Int("errored", stats.Errored),
		logger.Duration("duration", stats.Duration),
	)

	if cfg.BackendURL == "" {
		return stats, nil
	}
	after, err := fetchBackendStats(ctx, cfg)
	if err != nil {
		return stats, err
	}
	if err := verify(before, after, stats); err != nil {
		return stats, err
	}
	stats.Verified = true
	return stats, nil
}

// visit plays one visitor: open the form, rate, optionally comment, submit.
func visit(ctx context.Context, cfg Config, v Visit, l logger.Logger) outcome {
	c, err := newHTTPClient(cfg.TargetURL, cfg.Timeout)
	if err != nil {
		return outcomeErrored
	}

	steps := []step{
		{http.MethodGet, formPath(v.LocationID, ""), nil},
		{http.MethodPost, formPath(v.LocationID, "rating"), map[string]int{"rating": v.Rating}},
	}
	if v.Comment != "" {
		steps = append(steps, step{http.MethodPost, formPath(v.LocationID, "comment"), map[string]string{"comment": v.Comment}})
	}
	for _, s := range steps {
		var code int
		if s.method == http.MethodGet {
			code, err = c.Get(ctx, s.path, nil)
		} else {
			code, err = c.Post(ctx, s.path, s.body, nil)
		}
		if err != nil || code != http.StatusOK {
			l.Debug(ctx, "visit step failed", logger.String("path", s.path), logger.Int("status", code), logger.Error(err))
			return outcomeErrored
		}
	}

	var view formView
	code, err := c.Post(ctx, formPath(v.LocationID, "submit"), nil, &view)
	if err != nil || code != http.StatusOK {
		return outcomeErrored
	}
	switch view.Form.Status {
	case "success":
		return outcomeSucceeded
	case "error":
		return outcomeFailed
	default:
		return outcomeErrored
	}
}

func fetchBackendStats(ctx context.Context, cfg Config) (backendStats, error) {
	c, err := newHTTPClient(cfg.BackendURL, cfg.Timeout)
	if err != nil {
		return backendStats{}, err
	}
	var st backendStats
	code, err := c.Get(ctx, "/stats", &st)
	if err != nil {
		return backendStats{}, fmt.Errorf("backend stats: %w", err)
	}
	if code != http.StatusOK {
		return backendStats{}, fmt.Errorf("backend stats: unexpected status %d", code)
	}
	return st, nil
}

// verify compares the backend's tally growth with what the app reported.
func verify(before, after backendStats, stats Stats) error {
	if got := after.Received - before.Received; got != stats.Succeeded {
		return fmt.Errorf("%w: backend received %d, app reported %d", ErrMismatch, got, stats.Succeeded)
	}
	for r, n := range stats.ByRating {
		key := strconv.Itoa(r)
		if got := after.ByRating[key] - before.ByRating[key]; got != n {
			return fmt.Errorf("%w: rating %d: backend %d, app %d", ErrMismatch, r, got, n)
		}
	}
	return nil
}
