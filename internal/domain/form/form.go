// Package form implements the feedback form controller: it owns the rating,
// comment and submission status for one location and drives the submit
// lifecycle against a Poster.
package form

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/harkwise/userapp/internal/domain/feedback"
	"github.com/harkwise/userapp/pkg/logger"
	"github.com/harkwise/userapp/pkg/metrics"
)

// Poster sends a JSON body to a backend path. Any failure is reported as an error.
type Poster interface {
	Post(ctx context.Context, path string, body any) error
}

// PosterFunc adapts a function to Poster.
type PosterFunc func(ctx context.Context, path string, body any) error

// Post implements Poster.
func (f PosterFunc) Post(ctx context.Context, path string, body any) error { return f(ctx, path, body) }

// Controller is the state of one feedback form. It is safe for concurrent
// use; the mutex is released while the backend call runs and the loading
// status keeps a second submission out.
type Controller struct {
	mu sync.Mutex

	locationID string
	poster     Poster
	now        func() time.Time
	logger     logger.Logger

	rating         int
	comment        string
	status         feedback.Status
	errorMessage   string
	showValidation bool
}

// Option applies a configuration option to the Controller.
type Option func(*Controller)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates an idle, empty form for locationID.
func New(locationID string, poster Poster, opts ...Option) *Controller {
	c := &Controller{
		locationID: locationID,
		poster:     poster,
		now:        time.Now,
		logger:     logger.Nop(),
		status:     feedback.StatusIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LocationID returns the location this form collects feedback for.
func (c *Controller) LocationID() string {
	return c.locationID
}

// SetRating records a rating change. Accepted only while idle or error; a
// nonzero rating clears a shown validation error.
func (c *Controller) SetRating(n int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if FormDisabled(c.status) || n < 0 || n > feedback.MaxRating {
		return false
	}
	c.rating = n
	if n >= feedback.MinRating {
		c.showValidation = false
	}
	return true
}

// SetComment stores text cut to the comment limit. Ignored while loading or after success.
func (c *Controller) SetComment(text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if FormDisabled(c.status) {
		return false
	}
	c.comment = feedback.TruncateComment(text)
	return true
}

// Submit runs one submission attempt and returns the resulting status.
//
// Without a rating it only raises the validation flag and returns
// ErrRatingRequired. Backend failures are not returned: they move the form
// to the error status with the generic message, keeping rating and comment.
func (c *Controller) Submit(ctx context.Context) (feedback.Status, error) {
	c.mu.Lock()
	switch c.status {
	case feedback.StatusLoading:
		c.mu.Unlock()
		return feedback.StatusLoading, ErrBusy
	case feedback.StatusSuccess:
		c.mu.Unlock()
		return feedback.StatusSuccess, ErrSubmitted
	}
	if c.rating == 0 {
		c.showValidation = true
		status := c.status
		c.mu.Unlock()
		metrics.RecordValidationRejection()
		return status, ErrRatingRequired
	}

	c.showValidation = false
	c.errorMessage = ""
	c.status = feedback.StatusLoading
	payload, err := feedback.NewPayload(c.locationID, c.rating, c.comment, c.now())
	c.mu.Unlock()

	if err == nil {
		// The user cannot abort a sent submission; the poster's own timeout bounds it.
		err = c.poster.Post(context.WithoutCancel(ctx), feedback.SubmitPath, payload)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.status = feedback.StatusError
		c.errorMessage = feedback.SubmitErrorMessage
		metrics.RecordSubmission("error")
		c.logger.Warn(ctx, "feedback submission failed",
			logger.String("location_id", c.locationID),
			logger.Int("rating", payload.Rating),
			logger.Error(err),
		)
		return c.status, nil
	}

	c.status = feedback.StatusSuccess
	metrics.RecordSubmission("success")
	metrics.RecordRating(payload.Rating)
	c.logger.Info(ctx, "feedback submitted",
		logger.String("location_id", c.locationID),
		logger.Int("rating", payload.Rating),
		logger.Bool("has_comment", payload.Comment != ""),
	)
	return c.status, nil
}

// Reset clears the form after a successful submission.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != feedback.StatusSuccess {
		return fmt.Errorf("reset from %s: %w", c.status, ErrNotSubmitted)
	}
	c.rating = 0
	c.comment = ""
	c.status = feedback.StatusIdle
	c.errorMessage = ""
	c.showValidation = false
	return nil
}

// SubmitDisabled reports whether the submit control is disabled right now.
func (c *Controller) SubmitDisabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return SubmitDisabled(c.rating, c.status)
}

// FormDisabled reports whether comment and rating inputs are disabled right now.
func (c *Controller) FormDisabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return FormDisabled(c.status)
}

// SubmitDisabled is true when no rating is selected or the form is disabled.
func SubmitDisabled(rating int, status feedback.Status) bool {
	return rating == 0 || FormDisabled(status)
}

// FormDisabled is true while loading and after success.
func FormDisabled(status feedback.Status) bool {
	return status == feedback.StatusLoading || status == feedback.StatusSuccess
}
