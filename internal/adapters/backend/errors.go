package backend

import "errors"

// Sentinel kinds for backend errors.
var (
	// ErrSubmit covers every failed call: transport, timeout or non-2xx status.
	ErrSubmit = errors.New("backend submit failed")
	// ErrConfig is returned by New for an unusable base URL.
	ErrConfig = errors.New("backend client misconfigured")
)
