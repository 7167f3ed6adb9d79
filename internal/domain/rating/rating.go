// Package rating models the five-star rating control as view state.
//
// The control never commits a rating itself: Activate reports the chosen
// position and the owner decides. Hover preview is local to the control.
package rating

import (
	"fmt"

	"github.com/harkwise/userapp/internal/domain/feedback"
)

// Positions is the number of selectable stars.
const Positions = feedback.MaxRating

// Star is one rendered position.
type Star struct {
	Number   int    `json:"number"`
	Filled   bool   `json:"filled"`
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
}

// Control is the rating widget state: the committed rating supplied by the
// owner, the disabled mode, and a transient hover preview.
type Control struct {
	Committed int
	Disabled  bool

	hover int
}

// New returns a control showing committed.
func New(committed int, disabled bool) *Control {
	return &Control{Committed: clamp(committed), Disabled: disabled}
}

// Hover previews positions 1..k. Ignored while disabled.
func (c *Control) Hover(k int) {
	if c.Disabled {
		return
	}
	c.hover = clamp(k)
}

// Leave ends the hover preview. Ignored while disabled.
func (c *Control) Leave() {
	if c.Disabled {
		return
	}
	c.hover = 0
}

// Activate reports position k to the owner. It returns false when disabled
// or when k is not a star number.
func (c *Control) Activate(k int) (int, bool) {
	if c.Disabled || k < 1 || k > Positions {
		return 0, false
	}
	return k, true
}

// Filled is the number of stars drawn filled.
func (c *Control) Filled() int {
	if c.Disabled {
		return clamp(c.Committed)
	}
	return max(c.hover, clamp(c.Committed))
}

// Stars renders all positions in order.
func (c *Control) Stars() []Star {
	filled := c.Filled()
	stars := make([]Star, Positions)
	for i := range stars {
		n := i + 1
		stars[i] = Star{
			Number:   n,
			Filled:   n <= filled,
			Label:    Label(n),
			Disabled: c.Disabled,
		}
	}
	return stars
}

// Label is the accessible name of position n.
func Label(n int) string {
	if n == 1 {
		return "Rate 1 star"
	}
	return fmt.Sprintf("Rate %d stars", n)
}

func clamp(n int) int {
	return min(max(n, 0), Positions)
}
