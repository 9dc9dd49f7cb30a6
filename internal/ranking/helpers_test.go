package ranking

import (
	"context"
	"sync"
	"time"

	"freelancer-ranking/internal/models"
)

var testNow = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }
func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int { return &i }
func timePtr(t time.Time) *time.Time { return &t }

func daysAgo(d int) *time.Time {
	return timePtr(testNow.Add(-time.Duration(d) * 24 * time.Hour))
}

// candidate builds a bare candidate; opts fill in the fields a test cares about.
func candidate(id string, opts ...func(*models.Candidate)) models.Candidate {
	c := models.Candidate{
		Freelancer: models.Freelancer{ID: id, ProfileID: "p-" + id, Status: "busy"},
		Profile:    models.Profile{ID: "p-" + id, FullName: "Freelancer " + id},
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func withRating(r float64, reviews int) func(*models.Candidate) {
	return func(c *models.Candidate) {
		c.Freelancer.Rating = floatPtr(r)
		c.Freelancer.TotalReviews = intPtr(reviews)
	}
}

func withSkills(skills ...string) func(*models.Candidate) {
	return func(c *models.Candidate) { c.Freelancer.Skills = skills }
}

func withRate(rate float64) func(*models.Candidate) {
	return func(c *models.Candidate) { c.Freelancer.HourlyRate = floatPtr(rate) }
}

func withTitle(title string) func(*models.Candidate) {
	return func(c *models.Candidate) { c.Freelancer.Title = strPtr(title) }
}

func withBio(bio string) func(*models.Candidate) {
	return func(c *models.Candidate) { c.Freelancer.Bio = strPtr(bio) }
}

func withName(name string) func(*models.Candidate) {
	return func(c *models.Candidate) { c.Profile.FullName = name }
}

func withJobs(completed int, earned float64) func(*models.Candidate) {
	return func(c *models.Candidate) {
		c.Freelancer.CompletedJobs = intPtr(completed)
		c.Freelancer.TotalEarned = floatPtr(earned)
	}
}

func withUpdated(days int) func(*models.Candidate) {
	return func(c *models.Candidate) { c.Freelancer.UpdatedAt = daysAgo(days) }
}

func available() func(*models.Candidate) {
	return func(c *models.Candidate) { c.Freelancer.Status = models.StatusAvailable }
}

// memoryStore is an in-memory Store that applies FetchFilter.Matches and
// records the filters it was called with.
type memoryStore struct {
	mu          sync.Mutex
	candidates  []models.Candidate
	jobs        map[string]models.Job
	fetchErr    error
	jobErr      error
	filters     []FetchFilter
	fetchCalled int
}

func newMemoryStore(candidates ...models.Candidate) *memoryStore {
	return &memoryStore{candidates: candidates, jobs: map[string]models.Job{}}
}

func (m *memoryStore) FetchFreelancers(_ context.Context, filter FetchFilter) ([]models.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchCalled++
	m.filters = append(m.filters, filter)
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	var out []models.Candidate
	for _, c := range m.candidates {
		if filter.Matches(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memoryStore) FetchJob(_ context.Context, id string) (*models.Job, error) {
	if m.jobErr != nil {
		return nil, m.jobErr
	}
	job, ok := m.jobs[id]
	if !ok {
		return nil, nil
	}
	return &job, nil
}

func (m *memoryStore) FetchFreelancerByID(_ context.Context, id string) (*models.Candidate, error) {
	for _, c := range m.candidates {
		if c.Freelancer.ID == id {
			found := c
			return &found, nil
		}
	}
	return nil, nil
}

func ids(results []models.RankedResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Freelancer.ID
	}
	return out
}
