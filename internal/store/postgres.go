// Package store implements ranking.Store over the service's data sources.
package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	apperrors "freelancer-ranking/internal/common/errors"
	"freelancer-ranking/internal/common/logger"
	"freelancer-ranking/internal/models"
	"freelancer-ranking/internal/ranking"

	"github.com/lib/pq"
)

const freelancerSelect = `
	SELECT f.id, f.profile_id, f.bio, f.skills, f.hourly_rate, f.total_earned,
	       f.completed_jobs, f.rating, f.total_reviews, f.title,
	       f.portfolio_url, f.github_url, f.linkedin_url, f.status, f.updated_at,
	       p.id, p.full_name, p.avatar_url
	FROM freelancers f
	LEFT JOIN profiles p ON p.id = f.profile_id`

const jobSelect = `SELECT id, skills, budget FROM jobs WHERE id = $1`

// PostgresStore reads candidates from the freelancers and profiles tables.
type PostgresStore struct {
	db       *sql.DB
	pageSize int
	logger   logger.Logger
}

var _ ranking.Store = (*PostgresStore)(nil)

// NewPostgresStore returns a store over db that reads candidates pageSize
// rows at a time. pageSize <= 0 selects defaultPageSize.
func NewPostgresStore(db *sql.DB, pageSize int, log logger.Logger) *PostgresStore {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &PostgresStore{
		db:       db,
		pageSize: pageSize,
		logger:   logger.Component(log, "postgres-store"),
	}
}

// FetchFreelancers pushes the filter into SQL and returns every matching
// row ordered by id, paging on the last id seen.
func (s *PostgresStore) FetchFreelancers(ctx context.Context, filter ranking.FetchFilter) ([]models.Candidate, error) {
	start := time.Now()

	var (
		candidates []models.Candidate
		after      string
		pages      int
	)
	for {
		query, args := buildFreelancerQuery(filter, after, s.pageSize)
		page, err := s.queryCandidates(ctx, query, args)
		if err != nil {
			return nil, classifyQueryError(ctx, "fetch_freelancers", err)
		}
		candidates = append(candidates, page...)
		pages++
		if len(page) < s.pageSize {
			break
		}
		after = page[len(page)-1].Freelancer.ID
	}

	s.logger.Debug("fetched freelancers", map[string]interface{}{
		"rowCount":        len(candidates),
		"pages":           pages,
		"queryDurationMs": time.Since(start).Milliseconds(),
	})
	return candidates, nil
}

func (s *PostgresStore) queryCandidates(ctx context.Context, query string, args []interface{}) ([]models.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var page []models.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		page = append(page, c)
	}
	return page, rows.Err()
}

// FetchFreelancerByID returns nil when no freelancer has that id.
func (s *PostgresStore) FetchFreelancerByID(ctx context.Context, id string) (*models.Candidate, error) {
	row := s.db.QueryRowContext(ctx, freelancerSelect+"\n\tWHERE f.id = $1", id)
	c, err := scanCandidate(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classifyQueryError(ctx, "fetch_freelancer", err)
	}
	return &c, nil
}

// FetchJob returns nil when no job has that id.
func (s *PostgresStore) FetchJob(ctx context.Context, id string) (*models.Job, error) {
	var (
		job    models.Job
		skills pq.StringArray
		budget sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, jobSelect, id).Scan(&job.ID, &skills, &budget)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classifyQueryError(ctx, "fetch_job", err)
	}
	job.Skills = []string(skills)
	job.Budget = nullFloat(budget)
	return &job, nil
}

// buildFreelancerQuery renders one page of the candidate query for filter
// with positional arguments. A non-empty after starts the page past that id.
func buildFreelancerQuery(filter ranking.FetchFilter, after string, limit int) (string, []interface{}) {
	var (
		where []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.MinRating != nil {
		where = append(where, "f.rating >= "+arg(*filter.MinRating))
	}
	if filter.MinRate != nil {
		where = append(where, "f.hourly_rate >= "+arg(*filter.MinRate))
	}
	if filter.MaxRate != nil {
		where = append(where, "f.hourly_rate <= "+arg(*filter.MaxRate))
	}
	if filter.AvailableOnly {
		where = append(where, "f.status = "+arg(models.StatusAvailable))
	}
	if filter.ExcludeID != "" {
		where = append(where, "f.id <> "+arg(filter.ExcludeID))
	}
	if after != "" {
		where = append(where, "f.id > "+arg(after))
	}

	var b strings.Builder
	b.WriteString(freelancerSelect)
	if len(where) > 0 {
		b.WriteString("\n\tWHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString("\n\tORDER BY f.id")
	if limit > 0 {
		b.WriteString("\n\tLIMIT " + arg(limit))
	}
	return b.String(), args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCandidate(row rowScanner) (models.Candidate, error) {
	var (
		c                                 models.Candidate
		profileID, bio, title             sql.NullString
		portfolio, github, linkedin       sql.NullString
		status                            sql.NullString
		skills                            pq.StringArray
		rate, earned, rating              sql.NullFloat64
		completed, reviews                sql.NullInt64
		updatedAt                         sql.NullTime
		joinedProfileID, fullName, avatar sql.NullString
	)

	err := row.Scan(
		&c.Freelancer.ID, &profileID, &bio, &skills, &rate, &earned,
		&completed, &rating, &reviews, &title,
		&portfolio, &github, &linkedin, &status, &updatedAt,
		&joinedProfileID, &fullName, &avatar,
	)
	if err != nil {
		return models.Candidate{}, err
	}

	c.Freelancer.ProfileID = profileID.String
	c.Freelancer.Bio = nullString(bio)
	c.Freelancer.Skills = []string(skills)
	c.Freelancer.HourlyRate = nullFloat(rate)
	c.Freelancer.TotalEarned = nullFloat(earned)
	c.Freelancer.CompletedJobs = nullInt(completed)
	c.Freelancer.Rating = nullFloat(rating)
	c.Freelancer.TotalReviews = nullInt(reviews)
	c.Freelancer.Title = nullString(title)
	c.Freelancer.PortfolioURL = nullString(portfolio)
	c.Freelancer.GithubURL = nullString(github)
	c.Freelancer.LinkedinURL = nullString(linkedin)
	c.Freelancer.Status = status.String
	if updatedAt.Valid {
		t := updatedAt.Time
		c.Freelancer.UpdatedAt = &t
	}

	c.Profile.ID = joinedProfileID.String
	c.Profile.FullName = fullName.String
	c.Profile.AvatarURL = nullString(avatar)
	return c, nil
}

func classifyQueryError(ctx context.Context, operation string, err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.NewQueryTimeoutError(operation, err)
	}
	return apperrors.NewFreelancerQueryFailedError(operation, err)
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
