package ranking

import (
	"math"
	"strings"

	"freelancer-ranking/internal/models"
)

// Fallback scores for absent inputs.
const (
	neutralPerformanceRating = 20.0 // rating term when rated history is missing
	newFreelancerFloor       = 20.0 // completion term with no completed jobs
	neutralReputationRating  = 30.0
	neutralJobMatch          = 50.0
	neutralBudgetMatch       = 50.0
	neutralRecency           = 50.0
	staleDays                = 999 // activity age assumed without an update time
)

const (
	maxScore      = 100.0
	bioTargetLen  = 500.0
	linkPoints    = 8.33
	hoursPerWeek  = 40.0
	skillTermWt   = 0.7
	budgetTermWt  = 0.3
	maxSkillsTerm = 25.0
)

func capScore(v float64) float64 {
	return math.Min(maxScore, v)
}

// ProfileQuality rewards a complete profile: bio length up to 500
// characters, skills, external links, avatar and title.
func ProfileQuality(s Signals) float64 {
	score := 25 * math.Min(1, float64(s.BioLength)/bioTargetLen)
	score += math.Min(maxSkillsTerm, 5*float64(len(s.Skills)))
	score += linkPoints * float64(s.LinkCount)
	if s.HasAvatar {
		score += 10
	}
	if s.HasTitle {
		score += 15
	}
	return capScore(score)
}

// Performance uses completed jobs as a success-rate proxy, plus the rating
// and how recently the profile moved. A freelancer with neither completed
// jobs nor a rating scores the new-freelancer floor alone.
func Performance(s Signals) float64 {
	var score float64
	if s.CompletedJobs > 0 {
		score = 40
		if s.HasRating {
			score += s.Rating / 5 * 40
		} else {
			score += neutralPerformanceRating
		}
	} else {
		score = newFreelancerFloor
		if s.HasRating {
			score += s.Rating / 5 * 40
		}
	}

	if s.HasUpdate {
		switch d := s.DaysSinceUpdate; {
		case d < 7:
			score += 20
		case d < 30:
			score += 15
		case d < 90:
			score += 10
		default:
			score += 5
		}
	}
	return capScore(score)
}

// Experience grows logarithmically with completed jobs (up to 60) and
// total earnings (up to 40).
func Experience(s Signals) float64 {
	jobs := math.Min(60, math.Log10(float64(s.CompletedJobs)+1)*30)
	earned := math.Min(40, math.Log10(s.TotalEarned/100+1)*20)
	return capScore(jobs + earned)
}

// Reputation combines the rating (up to 60) with review volume on a
// square-root curve (up to 40).
func Reputation(s Signals) float64 {
	score := neutralReputationRating
	if s.HasRating {
		score = s.Rating / 5 * 60
	}
	score += math.Min(40, math.Sqrt(float64(s.TotalReviews))*8)
	return capScore(score)
}

// JobMatch scores fit against a job: 70% skill coverage, 30% budget fit.
// Without a job, or with a job that lists no skills, it is neutral.
func JobMatch(s Signals, job *models.Job) float64 {
	if job == nil || len(job.Skills) == 0 {
		return neutralJobMatch
	}
	skill := SkillMatch(s.Skills, job.Skills)
	return capScore(skillTermWt*skill + budgetTermWt*BudgetMatch(s.HourlyRate, job.Budget))
}

// SkillMatch is the percentage of required skills covered by at least one
// freelancer skill. It is 0 when nothing is required.
func SkillMatch(freelancerSkills, required []string) float64 {
	if len(required) == 0 {
		return 0
	}
	matched := 0
	for _, want := range required {
		if anySkillOverlaps(freelancerSkills, want) {
			matched++
		}
	}
	return float64(matched) / float64(len(required)) * 100
}

// BudgetMatch compares a 40-hour week at the freelancer's rate with the
// job budget. A zero rate or budget counts as unknown.
func BudgetMatch(hourlyRate float64, budget *float64) float64 {
	if hourlyRate == 0 || budget == nil || *budget == 0 {
		return neutralBudgetMatch
	}
	ratio := hourlyRate * hoursPerWeek / *budget
	switch {
	case ratio >= 0.7 && ratio <= 1.3:
		return 100
	case ratio >= 0.5 && ratio <= 1.5:
		return 80
	case ratio >= 0.3 && ratio <= 2.0:
		return 50
	default:
		return 20
	}
}

// RecencyBoost favours recently updated profiles.
func RecencyBoost(s Signals) float64 {
	if !s.HasUpdate {
		return neutralRecency
	}
	switch d := s.DaysSinceUpdate; {
	case d <= 1:
		return 100
	case d <= 7:
		return 90
	case d <= 14:
		return 75
	case d <= 30:
		return 60
	case d <= 90:
		return 40
	default:
		return 20
	}
}

// ActivityMultiplier scales the base score for freelancers active in the
// last week (1.10) or month (1.05).
func ActivityMultiplier(s Signals) float64 {
	days := staleDays
	if s.HasUpdate {
		days = s.DaysSinceUpdate
	}
	switch {
	case days <= 7:
		return 1.10
	case days <= 30:
		return 1.05
	default:
		return 1.0
	}
}

// skillsOverlap is a case-insensitive substring test in either direction.
// Blank skills never match.
func skillsOverlap(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func anySkillOverlaps(skills []string, want string) bool {
	for _, have := range skills {
		if skillsOverlap(have, want) {
			return true
		}
	}
	return false
}
