// Package site renders the server-side feedback pages.
//
// Every interaction is a plain form post answered with a redirect back to
// the page (Post/Redirect/Get), so the pages work without JavaScript.
package site

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"github.com/harkwise/userapp/internal/adapters/http/middleware"
	"github.com/harkwise/userapp/internal/adapters/http/visitor"
	"github.com/harkwise/userapp/internal/domain/form"
	"github.com/harkwise/userapp/internal/domain/rating"
	"github.com/harkwise/userapp/pkg/logger"
)

const (
	pageLanding = "landing.html"
	pageForm    = "form.html"
)

// Forms resolves the visitor's form for a location.
type Forms interface {
	Form(ctx context.Context, sessionID, locationID string) (*form.Controller, error)
}

type pageData struct {
	Brand string
	Path  string
	Form  form.View
}

// Handler serves the landing and feedback pages.
type Handler struct {
	forms   Forms
	cookies visitor.Cookies
	brand   string
	pages   map[string]*template.Template
	logger  logger.Logger
}

// NewHandler parses the embedded templates and builds the handler.
func NewHandler(forms Forms, opts ...Option) (*Handler, error) {
	h := &Handler{
		forms:   forms,
		cookies: visitor.NewCookies(false),
		brand:   "Harkwise",
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	h.pages = pages
	return h, nil
}

func parsePages() (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		// Stars are laid out right to left so CSS sibling selectors can preview hover.
		"reverse": func(stars []rating.Star) []rating.Star {
			out := slices.Clone(stars)
			slices.Reverse(out)
			return out
		},
	}
	pages := make(map[string]*template.Template, 2)
	for _, name := range []string{pageLanding, pageForm} {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrTemplate, name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

// Register attaches the page routes to mux.
func (h *Handler) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(FS())))
	// Browsers ask for this on their own; it must not be taken for a location.
	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /{$}", middleware.Metrics("landing", h.HandleLanding))
	mux.HandleFunc("GET /{locationId}", middleware.Metrics("page", h.HandlePage))
	mux.HandleFunc("POST /{locationId}", middleware.Metrics("page_submit", h.HandleSubmit))
	mux.HandleFunc("POST /{locationId}/rate", middleware.Metrics("page_rate", h.HandleRate))
	mux.HandleFunc("POST /{locationId}/reset", middleware.Metrics("page_reset", h.HandleReset))
}

// HandleLanding handles GET /.
func (h *Handler) HandleLanding(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, pageLanding, pageData{Brand: h.brand, Path: "/"})
}

// HandlePage handles GET /{locationId}. Opening another location starts a fresh form.
func (h *Handler) HandlePage(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	h.render(w, r, pageForm, pageData{
		Brand: h.brand,
		Path:  pagePath(c.LocationID()),
		Form:  c.Snapshot(),
	})
}

// HandleRate handles POST /{locationId}/rate from a star button. The comment
// typed so far travels with the same form and is kept.
func (h *Handler) HandleRate(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}
	n, err := strconv.Atoi(r.PostForm.Get("rating"))
	if err != nil {
		http.Error(w, "invalid rating", http.StatusBadRequest)
		return
	}
	applyComment(c, r.PostForm)
	v := c.Snapshot()
	if k, ok := rating.New(v.Rating, v.FormDisabled).Activate(n); ok {
		c.SetRating(k)
	}
	h.redirect(w, r, c)
}

// HandleSubmit handles POST /{locationId}. Rating and comment fields, when
// present, are applied before the submission attempt.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}
	if raw := r.PostForm.Get("rating"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid rating", http.StatusBadRequest)
			return
		}
		c.SetRating(n)
	}
	applyComment(c, r.PostForm)

	// Validation, busy and already-submitted outcomes are all visible on the page.
	if _, err := c.Submit(r.Context()); err != nil {
		h.logger.Debug(r.Context(), "submit refused",
			logger.String("location_id", c.LocationID()),
			logger.Error(err),
		)
	}
	h.redirect(w, r, c)
}

// HandleReset handles POST /{locationId}/reset from the success view.
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := c.Reset(); err != nil {
		h.logger.Debug(r.Context(), "reset refused", logger.Error(err))
	}
	h.redirect(w, r, c)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*form.Controller, bool) {
	sessionID := h.cookies.ID(w, r)
	c, err := h.forms.Form(r.Context(), sessionID, r.PathValue("locationId"))
	if err != nil {
		h.logger.Error(r.Context(), "form lookup failed", logger.Error(err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return nil, false
	}
	return c, true
}

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, c *form.Controller) {
	http.Redirect(w, r, pagePath(c.LocationID()), http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, page string, data pageData) {
	var buf bytes.Buffer
	if err := h.pages[page].Execute(&buf, data); err != nil {
		h.logger.Error(r.Context(), "render failed",
			logger.String("page", page),
			logger.Error(fmt.Errorf("%w: %w", ErrRender, err)),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func applyComment(c *form.Controller, values url.Values) {
	if _, ok := values["comment"]; ok {
		c.SetComment(values.Get("comment"))
	}
}

func pagePath(locationID string) string {
	return "/" + url.PathEscape(locationID)
}
