package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/harkwise/userapp/internal/adapters/http/visitor"
	"github.com/harkwise/userapp/internal/domain/feedback"
	"github.com/harkwise/userapp/internal/domain/form"
	"github.com/harkwise/userapp/pkg/logger"
)

// maxBodyBytes bounds request bodies; a full comment is at most 2000 bytes of UTF-8.
const maxBodyBytes = 8 << 10

type ratingRequest struct {
	Rating *int `json:"rating"`
}

type commentRequest struct {
	Comment *string `json:"comment"`
}

// FormsHandler serves the visitor's form as JSON.
type FormsHandler struct {
	forms   Forms
	cookies visitor.Cookies
	logger  logger.Logger
}

// NewFormsHandler creates a new forms handler.
func NewFormsHandler(forms Forms, cookies visitor.Cookies, l logger.Logger) *FormsHandler {
	return &FormsHandler{forms: forms, cookies: cookies, logger: l}
}

// HandleGet handles GET /api/v1/forms/{locationId}. An optional hover=k
// query previews k stars without committing anything.
func (h *FormsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	hover := 0
	if raw := r.URL.Query().Get("hover"); raw != "" {
		k, err := strconv.Atoi(raw)
		if err != nil || k < 0 || k > feedback.MaxRating {
			writeError(w, http.StatusBadRequest, codeBadRequest,
				fmt.Errorf("api.get_form: %w: hover must be between 0 and %d", ErrBadRequest, feedback.MaxRating))
			return
		}
		hover = k
	}

	c, ok := h.load(w, r)
	if !ok {
		return
	}
	writeForm(w, http.StatusOK, c.Snapshot().WithHover(hover))
}

// HandleRating handles POST /api/v1/forms/{locationId}/rating.
func (h *FormsHandler) HandleRating(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_rating"
	var req ratingRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}
	if req.Rating == nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, fmt.Errorf("%s: %w: missing rating", op, ErrBadRequest))
		return
	}

	c, ok := h.load(w, r)
	if !ok {
		return
	}
	n := *req.Rating
	if n < 0 || n > feedback.MaxRating {
		writeFormError(w, http.StatusUnprocessableEntity, codeInvalidRating,
			fmt.Sprintf("rating must be between 0 and %d", feedback.MaxRating), c.Snapshot())
		return
	}
	if !c.SetRating(n) {
		writeFormError(w, http.StatusConflict, codeFormLocked, "form is locked", c.Snapshot())
		return
	}
	writeForm(w, http.StatusOK, c.Snapshot())
}

// HandleComment handles POST /api/v1/forms/{locationId}/comment.
func (h *FormsHandler) HandleComment(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_comment"
	var req commentRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}
	if req.Comment == nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, fmt.Errorf("%s: %w: missing comment", op, ErrBadRequest))
		return
	}

	c, ok := h.load(w, r)
	if !ok {
		return
	}
	if !c.SetComment(*req.Comment) {
		writeFormError(w, http.StatusConflict, codeFormLocked, "form is locked", c.Snapshot())
		return
	}
	writeForm(w, http.StatusOK, c.Snapshot())
}

// HandleSubmit handles POST /api/v1/forms/{locationId}/submit. A backend
// failure is a handled outcome and is reported in the snapshot with 200.
func (h *FormsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	_, err := c.Submit(r.Context())
	switch {
	case err == nil:
		writeForm(w, http.StatusOK, c.Snapshot())
	case errors.Is(err, form.ErrRatingRequired):
		writeFormError(w, http.StatusUnprocessableEntity, codeRatingRequired, feedback.ValidationMessage, c.Snapshot())
	default:
		writeFormError(w, http.StatusConflict, codeFormLocked, err.Error(), c.Snapshot())
	}
}

// HandleReset handles POST /api/v1/forms/{locationId}/reset.
func (h *FormsHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := c.Reset(); err != nil {
		writeFormError(w, http.StatusConflict, codeFormLocked, err.Error(), c.Snapshot())
		return
	}
	writeForm(w, http.StatusOK, c.Snapshot())
}

func (h *FormsHandler) load(w http.ResponseWriter, r *http.Request) (*form.Controller, bool) {
	const op = "api.load_form"
	sessionID := h.cookies.ID(w, r)
	c, err := h.forms.Form(r.Context(), sessionID, r.PathValue("locationId"))
	if err != nil {
		h.logger.Error(r.Context(), "form lookup failed", logger.Error(err))
		writeError(w, http.StatusServiceUnavailable, codeUnavailable, fmt.Errorf("%s: %w", op, ErrUnavailable))
		return nil, false
	}
	return c, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}
