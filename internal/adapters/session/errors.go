package session

import "errors"

// Sentinel kinds for session store errors.
var (
	ErrEmptySession = errors.New("empty session id")
)
