package ranking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"freelancer-ranking/internal/common/logger"
	"freelancer-ranking/internal/common/metrics"
	"freelancer-ranking/internal/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Ranking modes, used as metric and log labels.
const (
	ModeRankAll   = "rank_all"
	ModeRecommend = "recommend"
	ModeSimilar   = "similar"
	ModeSearch    = "search"
)

const (
	defaultRecommendLimit = 20
	defaultSimilarLimit   = 5
	slowRankingThreshold  = 500 * time.Millisecond
)

// ErrNilStore is returned by NewEngine when no store is supplied.
var ErrNilStore = errors.New("ranking store cannot be nil")

// EngineConfig configures an Engine. Zero limits fall back to 20
// recommendations and 5 similar freelancers; a nil Clock uses time.Now.
type EngineConfig struct {
	Weights               Weights
	DefaultRecommendLimit int
	DefaultSimilarLimit   int
	Clock                 func() time.Time
}

// Engine runs the four ranking modes against a Store. It keeps no state
// between calls.
type Engine struct {
	store    Store
	composer *Composer
	clock    func() time.Time
	logger   logger.Logger
	tracer   trace.Tracer

	recommendLimit int
	similarLimit   int
}

// NewEngine validates cfg and builds an engine over store.
func NewEngine(cfg EngineConfig, store Store, log logger.Logger) (*Engine, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	composer, err := NewComposer(cfg.Weights)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		store:          store,
		composer:       composer,
		clock:          cfg.Clock,
		logger:         logger.Component(log, "ranking-engine"),
		tracer:         otel.Tracer("freelancer-ranking/internal/ranking"),
		recommendLimit: cfg.DefaultRecommendLimit,
		similarLimit:   cfg.DefaultSimilarLimit,
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	if e.recommendLimit <= 0 {
		e.recommendLimit = defaultRecommendLimit
	}
	if e.similarLimit <= 0 {
		e.similarLimit = defaultSimilarLimit
	}
	return e, nil
}

// Composer exposes the engine's composer.
func (e *Engine) Composer() *Composer {
	return e.composer
}

// RankAllOptions filters an overall ranking. Limit <= 0 returns everything.
type RankAllOptions struct {
	MinRating     *float64
	Skills        []string
	AvailableOnly bool
	Limit         int
}

// RecommendOptions filters job recommendations. Limit <= 0 uses the
// engine's default.
type RecommendOptions struct {
	MinRating *float64
	Limit     int
}

// SimilarOptions bounds a similar-freelancer lookup. Limit <= 0 uses the
// engine's default.
type SimilarOptions struct {
	Limit int
}

// SearchOptions filters a search. Filters apply in order: query, skills,
// category. Limit <= 0 returns everything.
type SearchOptions struct {
	Query     string
	Skills    []string
	Category  string
	MinRating *float64
	MinRate   *float64
	MaxRate   *float64
	Limit     int
}

// RankAll orders every matching freelancer by overall quality.
func (e *Engine) RankAll(ctx context.Context, opts RankAllOptions) (results []models.RankedResult, err error) {
	run := e.begin(ModeRankAll)
	defer func() { run.finish(results, err) }()

	candidates, err := e.fetch(ctx, ModeRankAll, FetchFilter{
		MinRating:     opts.MinRating,
		AvailableOnly: opts.AvailableOnly,
	})
	if err != nil {
		return nil, err
	}
	run.candidates = len(candidates)

	results = make([]models.RankedResult, 0, len(candidates))
	for _, c := range candidates {
		if !hasAnySkill(c, opts.Skills) {
			continue
		}
		results = append(results, e.rank(c, nil, run.now))
	}

	sortResults(results)
	return truncate(results, opts.Limit), nil
}

// RecommendForJob ranks freelancers against a job. An unknown job yields
// an empty list.
func (e *Engine) RecommendForJob(ctx context.Context, jobID string, opts RecommendOptions) (results []models.RankedResult, err error) {
	run := e.begin(ModeRecommend)
	defer func() { run.finish(results, err) }()

	job, err := e.store.FetchJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("fetch job %s: %w", jobID, err)
	}
	if job == nil {
		e.logger.Info("job not found, no recommendations", map[string]interface{}{"jobId": jobID})
		return []models.RankedResult{}, nil
	}

	candidates, err := e.fetch(ctx, ModeRecommend, FetchFilter{MinRating: opts.MinRating})
	if err != nil {
		return nil, err
	}
	run.candidates = len(candidates)

	results = make([]models.RankedResult, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, e.rank(c, job, run.now))
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = e.recommendLimit
	}
	sortResults(results)
	return truncate(results, limit), nil
}

// FindSimilar ranks freelancers by resemblance to a reference freelancer,
// blended with their quality score. The reference itself is never
// returned, and an unknown reference yields an empty list.
func (e *Engine) FindSimilar(ctx context.Context, freelancerID string, opts SimilarOptions) (results []models.RankedResult, err error) {
	run := e.begin(ModeSimilar)
	defer func() { run.finish(results, err) }()

	ref, err := e.store.FetchFreelancerByID(ctx, freelancerID)
	if err != nil {
		return nil, fmt.Errorf("fetch reference freelancer %s: %w", freelancerID, err)
	}
	if ref == nil {
		e.logger.Info("reference freelancer not found", map[string]interface{}{"freelancerId": freelancerID})
		return []models.RankedResult{}, nil
	}

	candidates, err := e.fetch(ctx, ModeSimilar, FetchFilter{ExcludeID: ref.Freelancer.ID})
	if err != nil {
		return nil, err
	}
	run.candidates = len(candidates)

	results = make([]models.RankedResult, 0, len(candidates))
	for _, c := range candidates {
		if c.Freelancer.ID == ref.Freelancer.ID {
			continue
		}
		r := e.rank(c, nil, run.now)
		sim := Similarity(ref.Freelancer, c.Freelancer)
		r.SimilarityScore = &sim
		r.RankScore = blendSimilarity(sim, r.Score.FinalScore)
		results = append(results, r)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = e.similarLimit
	}
	sortResults(results)
	return truncate(results, limit), nil
}

// SearchAndRank ranks freelancers matching a free-text search.
func (e *Engine) SearchAndRank(ctx context.Context, opts SearchOptions) (results []models.RankedResult, err error) {
	run := e.begin(ModeSearch)
	defer func() { run.finish(results, err) }()

	candidates, err := e.fetch(ctx, ModeSearch, FetchFilter{
		MinRating: opts.MinRating,
		MinRate:   opts.MinRate,
		MaxRate:   opts.MaxRate,
	})
	if err != nil {
		return nil, err
	}
	run.candidates = len(candidates)

	results = make([]models.RankedResult, 0, len(candidates))
	for _, c := range candidates {
		if !matchesQuery(c, opts.Query) || !hasAnySkill(c, opts.Skills) || !matchesCategory(c, opts.Category) {
			continue
		}
		results = append(results, e.rank(c, nil, run.now))
	}

	sortResults(results)
	return truncate(results, opts.Limit), nil
}

func (e *Engine) rank(c models.Candidate, job *models.Job, now time.Time) models.RankedResult {
	score := e.composer.Score(c, job, now)
	return models.RankedResult{
		Candidate: c,
		Score:     score,
		RankScore: score.FinalScore,
	}
}

// fetch loads candidates and drops duplicate identifiers, keeping the
// first occurrence.
func (e *Engine) fetch(ctx context.Context, mode string, filter FetchFilter) ([]models.Candidate, error) {
	ctx, span := e.tracer.Start(ctx, "ranking.fetchCandidates", trace.WithAttributes(
		attribute.String("ranking.mode", mode),
		attribute.Bool("ranking.available_only", filter.AvailableOnly),
	))
	defer span.End()

	candidates, err := e.store.FetchFreelancers(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch candidates failed")
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}

	seen := make(map[string]struct{}, len(candidates))
	unique := candidates[:0:0]
	for _, c := range candidates {
		if _, dup := seen[c.Freelancer.ID]; dup {
			continue
		}
		seen[c.Freelancer.ID] = struct{}{}
		unique = append(unique, c)
	}
	span.SetAttributes(attribute.Int("ranking.candidates", len(unique)))
	return unique, nil
}

// sortResults orders by RankScore descending, then by freelancer ID so
// equal scores always come back in the same order.
func sortResults(results []models.RankedResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].RankScore != results[j].RankScore {
			return results[i].RankScore > results[j].RankScore
		}
		return results[i].Freelancer.ID < results[j].Freelancer.ID
	})
}

func truncate(results []models.RankedResult, limit int) []models.RankedResult {
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}

// rankingRun carries the per-call clock reading and reports the call's
// outcome when it finishes.
type rankingRun struct {
	engine     *Engine
	mode       string
	start      time.Time
	now        time.Time
	candidates int
}

func (e *Engine) begin(mode string) *rankingRun {
	return &rankingRun{
		engine: e,
		mode:   mode,
		start:  time.Now(),
		now:    e.clock(),
	}
}

func (r *rankingRun) finish(results []models.RankedResult, err error) {
	elapsed := time.Since(r.start)
	metrics.RankingDuration.WithLabelValues(r.mode).Observe(elapsed.Seconds())

	if err != nil {
		metrics.RankingRequests.WithLabelValues(r.mode, metrics.OutcomeError).Inc()
		r.engine.logger.WithError(err).Error("ranking failed", map[string]interface{}{
			"mode":       r.mode,
			"durationMs": elapsed.Milliseconds(),
		})
		return
	}

	outcome := metrics.OutcomeSuccess
	if len(results) == 0 {
		outcome = metrics.OutcomeEmpty
	}
	metrics.RankingRequests.WithLabelValues(r.mode, outcome).Inc()
	metrics.RankingCandidates.WithLabelValues(r.mode).Observe(float64(r.candidates))
	metrics.RankingResults.WithLabelValues(r.mode).Observe(float64(len(results)))

	fields := map[string]interface{}{
		"mode":        r.mode,
		"inputCount":  r.candidates,
		"outputCount": len(results),
		"durationMs":  elapsed.Milliseconds(),
	}
	r.engine.logger.Info("ranking completed", fields)
	if elapsed > slowRankingThreshold {
		r.engine.logger.Warn("ranking exceeded 500ms", fields)
	}
}
