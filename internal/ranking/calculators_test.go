package ranking

import (
	"strings"
	"testing"
	"time"

	"freelancer-ranking/internal/models"

	"github.com/stretchr/testify/assert"
)

func signalsFor(c models.Candidate) Signals {
	return NewSignals(c, testNow)
}

func TestNewSignals_ResolvesAbsentFields(t *testing.T) {
	s := signalsFor(candidate("f1"))

	assert.Zero(t, s.BioLength)
	assert.Empty(t, s.Skills)
	assert.Zero(t, s.LinkCount)
	assert.False(t, s.HasAvatar)
	assert.False(t, s.HasTitle)
	assert.Zero(t, s.HourlyRate)
	assert.Zero(t, s.CompletedJobs)
	assert.Zero(t, s.TotalEarned)
	assert.Zero(t, s.TotalReviews)
	assert.False(t, s.HasRating)
	assert.False(t, s.HasUpdate)
}

func TestNewSignals_CountsPresentFields(t *testing.T) {
	c := candidate("f1", withBio("héllo"), withTitle("  Go Developer "), withUpdated(3))
	c.Freelancer.PortfolioURL = strPtr("https://example.com")
	c.Freelancer.GithubURL = strPtr("   ")
	c.Freelancer.LinkedinURL = strPtr("https://linkedin.com/in/x")
	c.Profile.AvatarURL = strPtr("https://cdn/avatar.png")
	c.Freelancer.CompletedJobs = intPtr(-4)

	s := signalsFor(c)

	assert.Equal(t, 5, s.BioLength, "bio length counts characters, not bytes")
	assert.Equal(t, 2, s.LinkCount, "blank links are absent")
	assert.True(t, s.HasAvatar)
	assert.True(t, s.HasTitle)
	assert.Equal(t, "Go Developer", s.Title)
	assert.Equal(t, 3, s.DaysSinceUpdate)
	assert.Zero(t, s.CompletedJobs, "negative counts are floored")
}

func TestNewSignals_WholeDays(t *testing.T) {
	c := candidate("f1")
	c.Freelancer.UpdatedAt = timePtr(testNow.Add(-47 * time.Hour))
	assert.Equal(t, 1, signalsFor(c).DaysSinceUpdate)

	c.Freelancer.UpdatedAt = timePtr(testNow.Add(5 * time.Hour))
	assert.Equal(t, -1, signalsFor(c).DaysSinceUpdate)
}

func TestProfileQuality(t *testing.T) {
	full := candidate("full",
		withBio(strings.Repeat("a", 600)),
		withSkills("go", "react", "sql", "docker", "k8s", "aws"),
		withTitle("Engineer"),
	)
	full.Freelancer.PortfolioURL = strPtr("p")
	full.Freelancer.GithubURL = strPtr("g")
	full.Freelancer.LinkedinURL = strPtr("l")
	full.Profile.AvatarURL = strPtr("a")

	partial := candidate("partial",
		withBio(strings.Repeat("a", 250)),
		withSkills("go", "react", "sql"),
		withTitle("Engineer"),
	)
	partial.Freelancer.PortfolioURL = strPtr("p")
	partial.Freelancer.GithubURL = strPtr("g")
	partial.Profile.AvatarURL = strPtr("a")

	tests := []struct {
		name string
		c    models.Candidate
		want float64
	}{
		{"empty profile", candidate("empty"), 0},
		{"partial profile", partial, 12.5 + 15 + 2*8.33 + 10 + 15},
		{"complete profile", full, 25 + 25 + 3*8.33 + 10 + 15},
		{"blank title ignored", candidate("blank", withTitle("   ")), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ProfileQuality(signalsFor(tt.c)), 1e-9)
		})
	}
}

func TestPerformance(t *testing.T) {
	tests := []struct {
		name string
		c    models.Candidate
		want float64
	}{
		{"empty record scores the new freelancer floor", candidate("f"), 20},
		{"rated with history, fresh", candidate("f", withJobs(5, 0), withRating(4.5, 3), withUpdated(3)), 40 + 36 + 20},
		{"rated without history", candidate("f", withRating(5, 1)), 20 + 40},
		{"history without rating", candidate("f", withJobs(2, 0), withUpdated(45)), 40 + 20 + 10},
		{"stale update", candidate("f", withJobs(10, 0), withRating(5, 10), withUpdated(200)), 40 + 40 + 5},
		{"seven days is no longer the top bracket", candidate("f", withUpdated(7)), 20 + 15},
		{"twenty nine days", candidate("f", withUpdated(29)), 20 + 15},
		{"thirty days", candidate("f", withUpdated(30)), 20 + 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Performance(signalsFor(tt.c)), 1e-9)
		})
	}
}

func TestExperience(t *testing.T) {
	tests := []struct {
		name string
		c    models.Candidate
		want float64
	}{
		{"no history", candidate("f"), 0},
		{"nine jobs, 900 earned", candidate("f", withJobs(9, 900)), 30 + 20},
		{"caps both terms", candidate("f", withJobs(999, 9900)), 60 + 40},
		{"earnings only", candidate("f", withJobs(0, 9900)), 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Experience(signalsFor(tt.c)), 1e-9)
		})
	}
}

func TestReputation(t *testing.T) {
	tests := []struct {
		name string
		c    models.Candidate
		want float64
	}{
		{"unrated", candidate("f"), 30},
		{"top rated, many reviews", candidate("f", withRating(5, 100)), 100},
		{"average rating, one review", candidate("f", withRating(3, 1)), 36 + 8},
		{"reviews without rating", candidate("f", func(c *models.Candidate) { c.Freelancer.TotalReviews = intPtr(4) }), 30 + 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Reputation(signalsFor(tt.c)), 1e-9)
		})
	}
}

func TestJobMatch(t *testing.T) {
	dev := signalsFor(candidate("f", withSkills("react developer"), withRate(25)))

	assert.Equal(t, 50.0, JobMatch(dev, nil), "no job is neutral")

	job := &models.Job{ID: "j1", Skills: []string{"React", "Node"}, Budget: floatPtr(1000)}
	assert.InDelta(t, 0.7*50+0.3*100, JobMatch(dev, job), 1e-9)

	noSkills := &models.Job{ID: "j2"}
	assert.InDelta(t, 50, JobMatch(dev, noSkills), 1e-9, "job without skills is neutral")

	wellPriced := &models.Job{ID: "j3", Skills: []string{}, Budget: floatPtr(1000)}
	assert.Equal(t, 100.0, BudgetMatch(25, wellPriced.Budget))
	assert.Equal(t, 50.0, JobMatch(dev, wellPriced), "budget fit does not lift a job without skills")
}

func TestSkillMatch(t *testing.T) {
	assert.Equal(t, 0.0, SkillMatch([]string{"go"}, nil))
	assert.Equal(t, 0.0, SkillMatch(nil, []string{"go"}))
	assert.Equal(t, 100.0, SkillMatch([]string{"Golang", "PostgreSQL"}, []string{"go", "postgres"}))
	assert.Equal(t, 50.0, SkillMatch([]string{"go"}, []string{"GO", "rust"}))
	assert.Equal(t, 0.0, SkillMatch([]string{"go", ""}, []string{"", " "}), "blank skills never match")
}

func TestBudgetMatch(t *testing.T) {
	budget := floatPtr(1000)
	tests := []struct {
		rate   float64
		budget *float64
		want   float64
	}{
		{25, budget, 100},
		{17.5, budget, 100},
		{32.5, budget, 100},
		{35, budget, 80},
		{12.5, budget, 80},
		{10, budget, 50},
		{50, budget, 50},
		{60, budget, 20},
		{5, budget, 20},
		{0, budget, 50},
		{25, nil, 50},
		{25, floatPtr(0), 50},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BudgetMatch(tt.rate, tt.budget), "rate=%v", tt.rate)
	}
}

func TestRecencyBoost(t *testing.T) {
	tests := []struct {
		days int
		want float64
	}{
		{0, 100}, {1, 100}, {2, 90}, {7, 90}, {8, 75}, {14, 75},
		{15, 60}, {30, 60}, {31, 40}, {90, 40}, {91, 20}, {400, 20},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RecencyBoost(signalsFor(candidate("f", withUpdated(tt.days)))), "days=%d", tt.days)
	}
	assert.Equal(t, 50.0, RecencyBoost(signalsFor(candidate("f"))))
}

func TestActivityMultiplier(t *testing.T) {
	tests := []struct {
		days int
		want float64
	}{
		{0, 1.10}, {7, 1.10}, {8, 1.05}, {30, 1.05}, {31, 1.0}, {365, 1.0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ActivityMultiplier(signalsFor(candidate("f", withUpdated(tt.days)))), "days=%d", tt.days)
	}
	assert.Equal(t, 1.0, ActivityMultiplier(signalsFor(candidate("f"))))

	future := candidate("f")
	future.Freelancer.UpdatedAt = timePtr(testNow.Add(72 * time.Hour))
	assert.Equal(t, 1.10, ActivityMultiplier(signalsFor(future)))
}
