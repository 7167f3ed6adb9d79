package config

import "errors"

// ErrInvalidConfig marks a Config rejected by Validate; ErrLoadConfig marks a
// YAML, .env or HARKWISE_* layer that could not be read.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
