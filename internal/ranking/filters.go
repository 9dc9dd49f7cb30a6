package ranking

import (
	"strings"

	"freelancer-ranking/internal/models"
)

// AllCategories is the category value meaning "do not filter by category".
const AllCategories = "All Categories"

// hasAnySkill keeps a candidate when at least one wanted skill overlaps one
// of its skills. No wanted skills keeps everyone.
func hasAnySkill(c models.Candidate, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, w := range wanted {
		if anySkillOverlaps(c.Freelancer.Skills, w) {
			return true
		}
	}
	return false
}

// matchesQuery looks for the query in full name, title, bio and skills.
// A blank query matches everyone.
func matchesQuery(c models.Candidate, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	f := c.Freelancer
	fields := make([]string, 0, 3+len(f.Skills))
	fields = append(fields, c.Profile.FullName)
	if f.Title != nil {
		fields = append(fields, *f.Title)
	}
	if f.Bio != nil {
		fields = append(fields, *f.Bio)
	}
	fields = append(fields, f.Skills...)
	return anyContains(fields, q)
}

// matchesCategory looks for the category in title and skills. Blank and
// AllCategories match everyone.
func matchesCategory(c models.Candidate, category string) bool {
	category = strings.TrimSpace(category)
	if category == "" || category == AllCategories {
		return true
	}
	f := c.Freelancer
	fields := make([]string, 0, 1+len(f.Skills))
	if f.Title != nil {
		fields = append(fields, *f.Title)
	}
	fields = append(fields, f.Skills...)
	return anyContains(fields, strings.ToLower(category))
}

// anyContains reports whether any field contains lowered needle, case-insensitively.
func anyContains(fields []string, needle string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
