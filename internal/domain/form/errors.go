package form

import (
	"errors"

	"github.com/harkwise/userapp/internal/domain/feedback"
)

// Sentinel kinds for form transitions.
var (
	// ErrRatingRequired is returned by Submit when no rating is selected.
	ErrRatingRequired = feedback.ErrRatingRequired
	// ErrBusy is returned while a submission is in flight.
	ErrBusy = errors.New("submission in progress")
	// ErrSubmitted is returned when the form already succeeded and needs a reset.
	ErrSubmitted = errors.New("feedback already submitted")
	// ErrNotSubmitted is returned by Reset outside the success state.
	ErrNotSubmitted = errors.New("nothing to reset")
)
