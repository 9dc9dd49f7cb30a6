package ranking

import (
	"context"

	"freelancer-ranking/internal/models"
)

// Store is the read-only fetch layer behind the engine.
//
// FetchJob and FetchFreelancerByID return nil with a nil error when the
// record does not exist; any error means the fetch itself failed.
type Store interface {
	FetchFreelancers(ctx context.Context, filter FetchFilter) ([]models.Candidate, error)
	FetchJob(ctx context.Context, id string) (*models.Job, error)
	FetchFreelancerByID(ctx context.Context, id string) (*models.Candidate, error)
}

// FetchFilter narrows a candidate fetch. Bounds are inclusive and a
// candidate with no value for a bounded field is excluded.
type FetchFilter struct {
	MinRating     *float64
	MinRate       *float64
	MaxRate       *float64
	AvailableOnly bool
	ExcludeID     string
}

// Matches applies the filter to a single candidate. Stores that cannot
// push a filter down use it directly.
func (f FetchFilter) Matches(c models.Candidate) bool {
	fr := c.Freelancer
	if f.ExcludeID != "" && fr.ID == f.ExcludeID {
		return false
	}
	if f.AvailableOnly && !fr.IsAvailable() {
		return false
	}
	if f.MinRating != nil && (fr.Rating == nil || *fr.Rating < *f.MinRating) {
		return false
	}
	if f.MinRate != nil && (fr.HourlyRate == nil || *fr.HourlyRate < *f.MinRate) {
		return false
	}
	if f.MaxRate != nil && (fr.HourlyRate == nil || *fr.HourlyRate > *f.MaxRate) {
		return false
	}
	return true
}
