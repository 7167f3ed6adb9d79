package feedback

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks a payload the way the backend contract expects it.
func (p Payload) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if _, err := time.Parse(time.RFC3339, p.SubmittedAt); err != nil {
		return fmt.Errorf("%w: submittedAt must be an ISO-8601 instant", ErrInvalidPayload)
	}
	return nil
}

// DecodePayload parses and validates a raw JSON body. Besides field rules it
// rejects a present-but-blank comment: blank comments must be omitted.
func DecodePayload(data []byte) (Payload, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if c, ok := raw["comment"]; ok {
		var s string
		if err := json.Unmarshal(c, &s); err != nil {
			return Payload{}, fmt.Errorf("%w: comment must be a string", ErrInvalidPayload)
		}
		if strings.TrimSpace(s) == "" {
			return Payload{}, fmt.Errorf("%w: blank comment must be omitted", ErrInvalidPayload)
		}
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := p.Validate(); err != nil {
		return Payload{}, err
	}
	return p, nil
}
