package form

import (
	"fmt"

	"github.com/harkwise/userapp/internal/domain/feedback"
	"github.com/harkwise/userapp/internal/domain/rating"
)

// View is an immutable snapshot of the form with every derived flag resolved.
type View struct {
	LocationID        string          `json:"locationId"`
	Rating            int             `json:"rating"`
	Comment           string          `json:"comment"`
	CommentLength     int             `json:"commentLength"`
	CommentCounter    string          `json:"commentCounter"`
	MaxCommentLength  int             `json:"maxCommentLength"`
	Status            feedback.Status `json:"status"`
	ErrorMessage      string          `json:"errorMessage,omitempty"`
	ShowValidation    bool            `json:"showValidation"`
	ValidationMessage string          `json:"validationMessage,omitempty"`
	SubmitDisabled    bool            `json:"submitDisabled"`
	FormDisabled      bool            `json:"formDisabled"`
	SubmitLabel       string          `json:"submitLabel"`
	Stars             []rating.Star   `json:"stars"`
}

// Snapshot captures the current state.
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	length := feedback.CommentLength(c.comment)
	v := View{
		LocationID:       c.locationID,
		Rating:           c.rating,
		Comment:          c.comment,
		CommentLength:    length,
		CommentCounter:   fmt.Sprintf("%d/%d", length, feedback.MaxCommentLength),
		MaxCommentLength: feedback.MaxCommentLength,
		Status:           c.status,
		SubmitDisabled:   SubmitDisabled(c.rating, c.status),
		FormDisabled:     FormDisabled(c.status),
		SubmitLabel:      "Submit Feedback",
		Stars:            rating.New(c.rating, FormDisabled(c.status)).Stars(),
	}
	if c.status == feedback.StatusError {
		v.ErrorMessage = c.errorMessage
	}
	if c.showValidation && c.rating == 0 {
		v.ShowValidation = true
		v.ValidationMessage = feedback.ValidationMessage
	}
	if c.status == feedback.StatusLoading {
		v.SubmitLabel = "Submitting..."
	}
	return v
}

// WithHover returns v with the stars redrawn for a hover preview over
// positions 1..k. k of 0 ends the preview. A disabled form ignores it.
func (v View) WithHover(k int) View {
	ctl := rating.New(v.Rating, v.FormDisabled)
	if k > 0 {
		ctl.Hover(k)
	} else {
		ctl.Leave()
	}
	v.Stars = ctl.Stars()
	return v
}
