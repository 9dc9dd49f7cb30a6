package ranking

import (
	"fmt"
	"math"
)

// weightSumTolerance absorbs float noise from weights read out of YAML.
const weightSumTolerance = 1e-6

// Weights is the composer's weight table. Values are fractions of the
// base score and must sum to 1.
type Weights struct {
	ProfileQuality float64 `json:"profile_quality"`
	Performance    float64 `json:"performance"`
	Experience     float64 `json:"experience"`
	Reputation     float64 `json:"reputation"`
	JobMatch       float64 `json:"job_match"`
	Recency        float64 `json:"recency"`
}

// DefaultWeights returns the production weight table.
//
//	base = quality*0.15 + performance*0.25 + experience*0.20
//	     + reputation*0.25 + jobMatch*0.10 + recency*0.05
func DefaultWeights() Weights {
	return Weights{
		ProfileQuality: 0.15,
		Performance:    0.25,
		Experience:     0.20,
		Reputation:     0.25,
		JobMatch:       0.10,
		Recency:        0.05,
	}
}

// WeightOverrides is a partial weight table. Nil fields are unset; a zero
// value switches that sub-score off.
type WeightOverrides struct {
	ProfileQuality *float64
	Performance    *float64
	Experience     *float64
	Reputation     *float64
	JobMatch       *float64
	Recency        *float64
}

// Merge overlays the set values of override onto w. A partially configured
// table therefore keeps the defaults for the missing keys.
func (w Weights) Merge(override WeightOverrides) Weights {
	merged := w
	for _, f := range []struct {
		dst *float64
		src *float64
	}{
		{&merged.ProfileQuality, override.ProfileQuality},
		{&merged.Performance, override.Performance},
		{&merged.Experience, override.Experience},
		{&merged.Reputation, override.Reputation},
		{&merged.JobMatch, override.JobMatch},
		{&merged.Recency, override.Recency},
	} {
		if f.src != nil {
			*f.dst = *f.src
		}
	}
	return merged
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.ProfileQuality + w.Performance + w.Experience + w.Reputation + w.JobMatch + w.Recency
}

// Validate rejects negative weights and tables that do not sum to 1.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"profile_quality": w.ProfileQuality,
		"performance":     w.Performance,
		"experience":      w.Experience,
		"reputation":      w.Reputation,
		"job_match":       w.JobMatch,
		"recency":         w.Recency,
	} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("weight %s must be non-negative, got %v", name, v)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1) > weightSumTolerance {
		return fmt.Errorf("weights must sum to 1, got %.6f", sum)
	}
	return nil
}
