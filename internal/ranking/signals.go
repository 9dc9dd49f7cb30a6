package ranking

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"freelancer-ranking/internal/models"
)

// Signals is a candidate with every nullable field resolved. It is the
// only place where absent upstream data turns into a concrete value; the
// calculators never look at the raw records.
type Signals struct {
	BioLength  int
	Skills     []string
	LinkCount  int
	HasAvatar  bool
	HasTitle   bool
	Title      string
	HourlyRate float64

	CompletedJobs int
	TotalEarned   float64
	TotalReviews  int
	Rating        float64
	HasRating     bool

	// DaysSinceUpdate is whole days between UpdatedAt and now; it is only
	// meaningful when HasUpdate is set.
	DaysSinceUpdate int
	HasUpdate       bool
}

// NewSignals resolves c against now:
//   - bio, title and links count as absent when nil or blank
//   - skills, completed jobs, reviews, earnings and rate default to zero
//   - rating and update time keep an explicit presence flag, since their
//     neutral scores differ per calculator
//   - negative counts and earnings are floored at zero
func NewSignals(c models.Candidate, now time.Time) Signals {
	f := c.Freelancer

	s := Signals{
		Skills:        f.Skills,
		HasAvatar:     present(c.Profile.AvatarURL),
		HasTitle:      present(f.Title),
		HourlyRate:    floatOr(f.HourlyRate, 0),
		CompletedJobs: max(intOr(f.CompletedJobs, 0), 0),
		TotalEarned:   math.Max(floatOr(f.TotalEarned, 0), 0),
		TotalReviews:  max(intOr(f.TotalReviews, 0), 0),
	}

	if f.Bio != nil {
		s.BioLength = utf8.RuneCountInString(*f.Bio)
	}
	if s.HasTitle {
		s.Title = strings.TrimSpace(*f.Title)
	}
	for _, link := range []*string{f.PortfolioURL, f.GithubURL, f.LinkedinURL} {
		if present(link) {
			s.LinkCount++
		}
	}
	if f.Rating != nil {
		s.Rating = *f.Rating
		s.HasRating = true
	}
	if f.UpdatedAt != nil {
		s.DaysSinceUpdate = daysBetween(*f.UpdatedAt, now)
		s.HasUpdate = true
	}

	return s
}

// daysBetween counts whole days elapsed from then to now. A timestamp in
// the future yields a negative count, which every bracket treats as fresh.
func daysBetween(then, now time.Time) int {
	return int(math.Floor(now.Sub(then).Hours() / 24))
}

func present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

func floatOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

func intOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}
