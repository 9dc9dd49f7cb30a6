// internal/models/freelancer.go
package models

import "time"

// StatusAvailable is the only freelancer status the availability filter keeps.
const StatusAvailable = "available"

// Freelancer is a marketplace freelancer as read from the primary store.
// Pointer fields are nullable upstream; a nil Skills slice means absent.
type Freelancer struct {
	ID            string     `json:"id"`
	ProfileID     string     `json:"profileId,omitempty"`
	Bio           *string    `json:"bio,omitempty"`
	Skills        []string   `json:"skills,omitempty"`
	HourlyRate    *float64   `json:"hourlyRate,omitempty"`
	TotalEarned   *float64   `json:"totalEarned,omitempty"`
	CompletedJobs *int       `json:"completedJobs,omitempty"`
	Rating        *float64   `json:"rating,omitempty"`
	TotalReviews  *int       `json:"totalReviews,omitempty"`
	Title         *string    `json:"title,omitempty"`
	PortfolioURL  *string    `json:"portfolioUrl,omitempty"`
	GithubURL     *string    `json:"githubUrl,omitempty"`
	LinkedinURL   *string    `json:"linkedinUrl,omitempty"`
	Status        string     `json:"status"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
}

// IsAvailable reports whether the freelancer is open for work.
func (f Freelancer) IsAvailable() bool {
	return f.Status == StatusAvailable
}

// Profile is the public identity attached to a freelancer.
type Profile struct {
	ID        string  `json:"id"`
	FullName  string  `json:"fullName"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

// Candidate is a freelancer joined with its profile, the unit every fetch returns.
type Candidate struct {
	Freelancer Freelancer `json:"freelancer"`
	Profile    Profile    `json:"profile"`
}

// ID returns the freelancer identifier.
func (c Candidate) ID() string {
	return c.Freelancer.ID
}

// Job is the subset of a job posting that job-targeted scoring reads.
type Job struct {
	ID     string   `json:"id"`
	Skills []string `json:"skills,omitempty"`
	Budget *float64 `json:"budget,omitempty"`
}
