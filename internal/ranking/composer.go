package ranking

import (
	"fmt"
	"time"

	"freelancer-ranking/internal/models"
)

// Composer turns a candidate into a ScoreBreakdown using a fixed weight
// table. It holds no other state and is safe for concurrent use.
type Composer struct {
	weights Weights
}

// NewComposer validates w and returns a composer bound to it.
func NewComposer(w Weights) (*Composer, error) {
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ranking weights: %w", err)
	}
	return &Composer{weights: w}, nil
}

// Weights returns the table the composer was built with.
func (c *Composer) Weights() Weights {
	return c.weights
}

// Score computes every sub-score for cand at now. job may be nil, in
// which case job match is neutral.
func (c *Composer) Score(cand models.Candidate, job *models.Job, now time.Time) models.ScoreBreakdown {
	s := NewSignals(cand, now)

	b := models.ScoreBreakdown{
		FreelancerID:       cand.Freelancer.ID,
		ProfileQuality:     ProfileQuality(s),
		Performance:        Performance(s),
		Experience:         Experience(s),
		Reputation:         Reputation(s),
		JobMatch:           JobMatch(s, job),
		Recency:            RecencyBoost(s),
		ActivityMultiplier: ActivityMultiplier(s),
	}

	w := c.weights
	b.BaseScore = b.ProfileQuality*w.ProfileQuality +
		b.Performance*w.Performance +
		b.Experience*w.Experience +
		b.Reputation*w.Reputation +
		b.JobMatch*w.JobMatch +
		b.Recency*w.Recency
	b.FinalScore = b.BaseScore * b.ActivityMultiplier

	return b
}
