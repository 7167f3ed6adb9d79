package site

import (
	"strings"

	"github.com/harkwise/userapp/internal/adapters/http/visitor"
	"github.com/harkwise/userapp/pkg/logger"
)

// Option applies a configuration option to the Handler.
type Option func(*Handler)

// WithBrand sets the product name shown in the header, footer and titles.
func WithBrand(name string) Option {
	return func(h *Handler) {
		if name = strings.TrimSpace(name); name != "" {
			h.brand = name
		}
	}
}

// WithCookies sets the visitor cookie helper.
func WithCookies(c visitor.Cookies) Option {
	return func(h *Handler) {
		h.cookies = c
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}
