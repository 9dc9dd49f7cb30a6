package store

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "freelancer-ranking/internal/common/errors"
	"freelancer-ranking/internal/common/logger"
	"freelancer-ranking/internal/models"
	"freelancer-ranking/internal/ranking"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// defaultPageSize is the page size both stores fall back to.
const defaultPageSize = 500

// ElasticsearchStore reads denormalized candidate documents. The id field
// of both indices must be mapped as a keyword.
type ElasticsearchStore struct {
	client          *elasticsearch.Client
	freelancerIndex string
	jobIndex        string
	pageSize        int
	logger          logger.Logger
}

var _ ranking.Store = (*ElasticsearchStore)(nil)

// ElasticsearchStoreOptions names the indices and sets how many hits one
// search page returns.
type ElasticsearchStoreOptions struct {
	FreelancerIndex string
	JobIndex        string
	PageSize        int
}

func NewElasticsearchStore(client *elasticsearch.Client, opts ElasticsearchStoreOptions, log logger.Logger) *ElasticsearchStore {
	s := &ElasticsearchStore{
		client:          client,
		freelancerIndex: opts.FreelancerIndex,
		jobIndex:        opts.JobIndex,
		pageSize:        opts.PageSize,
		logger:          logger.Component(log, "elasticsearch-store"),
	}
	if s.freelancerIndex == "" {
		s.freelancerIndex = "freelancers"
	}
	if s.jobIndex == "" {
		s.jobIndex = "jobs"
	}
	if s.pageSize <= 0 {
		s.pageSize = defaultPageSize
	}
	return s
}

// freelancerDocument is one entry of the freelancer index: a freelancer
// with its profile fields inlined.
type freelancerDocument struct {
	ID            string     `json:"id"`
	ProfileID     string     `json:"profile_id,omitempty"`
	Bio           *string    `json:"bio,omitempty"`
	Skills        []string   `json:"skills,omitempty"`
	HourlyRate    *float64   `json:"hourly_rate,omitempty"`
	TotalEarned   *float64   `json:"total_earned,omitempty"`
	CompletedJobs *int       `json:"completed_jobs,omitempty"`
	Rating        *float64   `json:"rating,omitempty"`
	TotalReviews  *int       `json:"total_reviews,omitempty"`
	Title         *string    `json:"title,omitempty"`
	PortfolioURL  *string    `json:"portfolio_url,omitempty"`
	GithubURL     *string    `json:"github_url,omitempty"`
	LinkedinURL   *string    `json:"linkedin_url,omitempty"`
	Status        string     `json:"status"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
	FullName      string     `json:"full_name"`
	AvatarURL     *string    `json:"avatar_url,omitempty"`
}

func (d freelancerDocument) toCandidate(docID string) models.Candidate {
	id := d.ID
	if id == "" {
		id = docID
	}
	return models.Candidate{
		Freelancer: models.Freelancer{
			ID:            id,
			ProfileID:     d.ProfileID,
			Bio:           d.Bio,
			Skills:        d.Skills,
			HourlyRate:    d.HourlyRate,
			TotalEarned:   d.TotalEarned,
			CompletedJobs: d.CompletedJobs,
			Rating:        d.Rating,
			TotalReviews:  d.TotalReviews,
			Title:         d.Title,
			PortfolioURL:  d.PortfolioURL,
			GithubURL:     d.GithubURL,
			LinkedinURL:   d.LinkedinURL,
			Status:        d.Status,
			UpdatedAt:     d.UpdatedAt,
		},
		Profile: models.Profile{
			ID:        d.ProfileID,
			FullName:  d.FullName,
			AvatarURL: d.AvatarURL,
		},
	}
}

type jobDocument struct {
	ID     string   `json:"id"`
	Skills []string `json:"skills,omitempty"`
	Budget *float64 `json:"budget,omitempty"`
}

type searchResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Hits []struct {
			ID     string             `json:"_id"`
			Source freelancerDocument `json:"_source"`
			Sort   []interface{}      `json:"sort"`
		} `json:"hits"`
	} `json:"hits"`
}

type getResponse[T any] struct {
	ID     string `json:"_id"`
	Found  bool   `json:"found"`
	Source T      `json:"_source"`
}

// FetchFreelancers runs a filter-only bool query over the freelancer index
// and follows search_after until every matching document is read.
func (s *ElasticsearchStore) FetchFreelancers(ctx context.Context, filter ranking.FetchFilter) ([]models.Candidate, error) {
	var (
		candidates []models.Candidate
		after      []interface{}
		pages      int
		tookMs     int64
	)
	for {
		page, err := s.searchPage(ctx, filter, after)
		if err != nil {
			return nil, err
		}
		pages++
		tookMs += page.Took

		hits := page.Hits.Hits
		for _, hit := range hits {
			candidates = append(candidates, hit.Source.toCandidate(hit.ID))
		}
		if len(hits) < s.pageSize {
			break
		}
		after = hits[len(hits)-1].Sort
		if len(after) == 0 {
			return nil, apperrors.NewSearchQueryFailedError("fetch_freelancers", fmt.Errorf("hit %s has no sort values to page from", hits[len(hits)-1].ID))
		}
	}

	s.logger.Debug("fetched freelancers", map[string]interface{}{
		"index":    s.freelancerIndex,
		"hitCount": len(candidates),
		"pages":    pages,
		"tookMs":   tookMs,
	})
	if candidates == nil {
		candidates = []models.Candidate{}
	}
	return candidates, nil
}

func (s *ElasticsearchStore) searchPage(ctx context.Context, filter ranking.FetchFilter, after []interface{}) (*searchResponse, error) {
	body, err := json.Marshal(buildSearchQuery(filter, after, s.pageSize))
	if err != nil {
		return nil, apperrors.NewSearchQueryFailedError("fetch_freelancers", err)
	}

	req := esapi.SearchRequest{
		Index: []string{s.freelancerIndex},
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, classifyTransportError(ctx, "fetch_freelancers", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, s.responseError("fetch_freelancers", s.freelancerIndex, res)
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewSearchQueryFailedError("fetch_freelancers", fmt.Errorf("decode response: %w", err))
	}
	return &parsed, nil
}

// FetchFreelancerByID returns nil when the document does not exist.
func (s *ElasticsearchStore) FetchFreelancerByID(ctx context.Context, id string) (*models.Candidate, error) {
	var doc getResponse[freelancerDocument]
	found, err := s.getDocument(ctx, "fetch_freelancer", s.freelancerIndex, id, &doc)
	if err != nil || !found {
		return nil, err
	}
	docID := doc.ID
	if docID == "" {
		docID = id
	}
	c := doc.Source.toCandidate(docID)
	return &c, nil
}

// FetchJob returns nil when the document does not exist.
func (s *ElasticsearchStore) FetchJob(ctx context.Context, id string) (*models.Job, error) {
	var doc getResponse[jobDocument]
	found, err := s.getDocument(ctx, "fetch_job", s.jobIndex, id, &doc)
	if err != nil || !found {
		return nil, err
	}
	job := models.Job{ID: doc.Source.ID, Skills: doc.Source.Skills, Budget: doc.Source.Budget}
	if job.ID == "" {
		job.ID = id
	}
	return &job, nil
}

func (s *ElasticsearchStore) getDocument(ctx context.Context, operation, index, id string, target interface{}) (bool, error) {
	req := esapi.GetRequest{Index: index, DocumentID: id}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return false, classifyTransportError(ctx, operation, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		raw, _ := io.ReadAll(res.Body)
		if strings.Contains(string(raw), "index_not_found_exception") {
			return false, apperrors.NewIndexNotFoundError(index)
		}
		return false, nil
	}
	if res.IsError() {
		return false, s.responseError(operation, index, res)
	}

	if err := json.NewDecoder(res.Body).Decode(target); err != nil {
		return false, apperrors.NewSearchQueryFailedError(operation, fmt.Errorf("decode response: %w", err))
	}
	return true, nil
}

func (s *ElasticsearchStore) responseError(operation, index string, res *esapi.Response) error {
	if res.StatusCode == http.StatusNotFound {
		return apperrors.NewIndexNotFoundError(index)
	}
	return apperrors.NewSearchQueryFailedError(operation, fmt.Errorf("search query failed: %s", res.String()))
}

// buildSearchQuery pushes the fetch filter into a bool query for one page.
// Every clause is a filter; relevance scoring is the engine's job. A
// non-empty after continues from the sort values of the previous page.
func buildSearchQuery(filter ranking.FetchFilter, after []interface{}, size int) map[string]interface{} {
	filters := []interface{}{}
	mustNot := []interface{}{}

	if filter.MinRating != nil {
		filters = append(filters, map[string]interface{}{
			"range": map[string]interface{}{"rating": map[string]interface{}{"gte": *filter.MinRating}},
		})
	}
	if filter.MinRate != nil || filter.MaxRate != nil {
		bounds := map[string]interface{}{}
		if filter.MinRate != nil {
			bounds["gte"] = *filter.MinRate
		}
		if filter.MaxRate != nil {
			bounds["lte"] = *filter.MaxRate
		}
		filters = append(filters, map[string]interface{}{
			"range": map[string]interface{}{"hourly_rate": bounds},
		})
	}
	if filter.AvailableOnly {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"status": models.StatusAvailable},
		})
	}
	if filter.ExcludeID != "" {
		mustNot = append(mustNot, map[string]interface{}{
			"ids": map[string]interface{}{"values": []string{filter.ExcludeID}},
		})
	}

	boolQuery := map[string]interface{}{"filter": filters}
	if len(mustNot) > 0 {
		boolQuery["must_not"] = mustNot
	}

	query := map[string]interface{}{
		"size":  size,
		"sort":  []interface{}{map[string]interface{}{"id": "asc"}},
		"query": map[string]interface{}{"bool": boolQuery},
	}
	if len(after) > 0 {
		query["search_after"] = after
	}
	return query
}

func classifyTransportError(ctx context.Context, operation string, err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.NewSearchTimeoutError(operation, err)
	}
	return apperrors.NewElasticsearchConnectionFailedError(err)
}
