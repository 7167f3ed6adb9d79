package feedback

import "errors"

// Sentinel kinds for feedback errors.
var (
	ErrRatingRequired = errors.New("rating required")
	ErrInvalidPayload = errors.New("invalid feedback payload")
)
