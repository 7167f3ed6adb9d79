package loadgen

import (
	"fmt"
	"math/rand/v2"

	"github.com/harkwise/userapp/internal/domain/feedback"
)

var comments = []string{
	"Great service!",
	"Excellent coffee!",
	"Nice bread",
	"A bit slow today",
	"Friendly staff, will come back",
	"Too noisy",
}

// GenerateVisits builds n visits from seed.
func GenerateVisits(cfg Config) []Visit {
	cfg = cfg.withDefaults()
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	visits := make([]Visit, cfg.Visitors)
	for i := range visits {
		v := Visit{
			LocationID: cfg.Locations[rng.IntN(len(cfg.Locations))],
			Rating:     feedback.MinRating + rng.IntN(feedback.MaxRating),
		}
		if rng.Float64() < cfg.CommentRate {
			v.Comment = fmt.Sprintf("%s (#%d)", comments[rng.IntN(len(comments))], i+1)
		}
		visits[i] = v
	}
	return visits
}
