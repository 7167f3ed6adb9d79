package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest  = errors.New("bad request")
	ErrUnavailable = errors.New("form unavailable")
)

// Error codes returned in error bodies.
const (
	codeBadRequest     = "bad_request"
	codeUnavailable    = "unavailable"
	codeRatingRequired = "rating_required"
	codeInvalidRating  = "invalid_rating"
	codeFormLocked     = "form_locked"
)
