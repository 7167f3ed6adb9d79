// Package feedback holds the feedback wire contract shared by the form, the
// backend client and the development backend.
package feedback

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Rating bounds. Zero means "unselected" and never leaves the form.
const (
	MinRating = 1
	MaxRating = 5
)

// MaxCommentLength is the comment limit in characters.
const MaxCommentLength = 500

// SubmitPath is the backend route receiving payloads.
const SubmitPath = "/api/v1/feedback"

// User-facing messages.
const (
	SubmitErrorMessage = "Failed to submit feedback. Please try again."
	ValidationMessage  = "Please select a rating before submitting"
)

// TimestampLayout renders UTC instants with millisecond precision, e.g. 2026-10-18T09:30:00.000Z.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Status is the lifecycle stage of one submission attempt.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

func (s Status) String() string { return string(s) }

// Payload is the JSON body sent to SubmitPath.
type Payload struct {
	LocationID  string `json:"locationId"`
	Rating      int    `json:"rating" validate:"min=1,max=5"`
	Comment     string `json:"comment,omitempty" validate:"max=500"`
	SubmittedAt string `json:"submittedAt" validate:"required"`
}

// NewPayload builds the payload for one submit attempt. The comment is trimmed
// and dropped entirely when nothing is left; now is formatted in UTC.
func NewPayload(locationID string, rating int, comment string, now time.Time) (Payload, error) {
	if rating < MinRating || rating > MaxRating {
		return Payload{}, ErrRatingRequired
	}
	return Payload{
		LocationID:  locationID,
		Rating:      rating,
		Comment:     strings.TrimSpace(comment),
		SubmittedAt: FormatTimestamp(now),
	}, nil
}

// FormatTimestamp renders t as an ISO-8601 UTC instant.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// TruncateComment replaces invalid UTF-8 with U+FFFD and cuts text to
// MaxCommentLength characters.
func TruncateComment(text string) string {
	text = strings.ToValidUTF8(text, string(utf8.RuneError))
	if utf8.RuneCountInString(text) <= MaxCommentLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:MaxCommentLength])
}

// CommentLength counts characters, not bytes.
func CommentLength(text string) int {
	return utf8.RuneCountInString(text)
}
