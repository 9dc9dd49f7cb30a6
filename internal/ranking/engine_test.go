package ranking

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"freelancer-ranking/internal/common/logger"
	"freelancer-ranking/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, store Store) *Engine {
	t.Helper()
	e, err := NewEngine(EngineConfig{
		Weights: DefaultWeights(),
		Clock:   func() time.Time { return testNow },
	}, store, logger.NewTestLogger(t))
	require.NoError(t, err)
	return e
}

func TestNewEngine(t *testing.T) {
	_, err := NewEngine(EngineConfig{Weights: DefaultWeights()}, nil, logger.NewNoOpLogger())
	assert.ErrorIs(t, err, ErrNilStore)

	_, err = NewEngine(EngineConfig{Weights: Weights{Reputation: 0.5}}, newMemoryStore(), logger.NewNoOpLogger())
	assert.ErrorContains(t, err, "invalid ranking weights")

	e, err := NewEngine(EngineConfig{Weights: DefaultWeights()}, newMemoryStore(), nil)
	require.NoError(t, err)
	assert.Equal(t, 20, e.recommendLimit)
	assert.Equal(t, 5, e.similarLimit)
	assert.NotNil(t, e.clock)
	assert.Equal(t, DefaultWeights(), e.Composer().Weights())
}

func TestRankAll_HigherReputationRanksFirst(t *testing.T) {
	x := candidate("x", withRating(5, 100))
	y := candidate("y", withRating(3, 1))
	e := newTestEngine(t, newMemoryStore(y, x))

	results, err := e.RankAll(context.Background(), RankAllOptions{})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, []string{"x", "y"}, ids(results))
	assert.Greater(t, results[0].Score.FinalScore, results[1].Score.FinalScore)
	assert.Nil(t, results[0].SimilarityScore)
}

func TestRankAll_Filters(t *testing.T) {
	store := newMemoryStore(
		candidate("a", withRating(4.8, 10), withSkills("Go", "Kubernetes"), available()),
		candidate("b", withRating(4.9, 10), withSkills("React"), available()),
		candidate("c", withRating(3.0, 10), withSkills("golang")),
		candidate("d", withSkills("go")),
	)
	e := newTestEngine(t, store)
	ctx := context.Background()

	results, err := e.RankAll(ctx, RankAllOptions{Skills: []string{"go"}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "c", "d"}, ids(results))

	results, err = e.RankAll(ctx, RankAllOptions{MinRating: floatPtr(4.5)})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids(results), "unrated freelancers fail a rating bound")

	results, err = e.RankAll(ctx, RankAllOptions{AvailableOnly: true, Skills: []string{"REACT"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids(results))

	last := store.filters[len(store.filters)-1]
	assert.True(t, last.AvailableOnly)
	assert.Nil(t, last.MinRating)
}

func TestRankAll_Limit(t *testing.T) {
	var candidates []models.Candidate
	for i := 0; i < 30; i++ {
		candidates = append(candidates, candidate(fmt.Sprintf("f%02d", i), withRating(float64(i%5), i)))
	}
	e := newTestEngine(t, newMemoryStore(candidates...))
	ctx := context.Background()

	all, err := e.RankAll(ctx, RankAllOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 30, "no limit returns everyone")

	top, err := e.RankAll(ctx, RankAllOptions{Limit: 7})
	require.NoError(t, err)
	require.Len(t, top, 7)
	assert.Equal(t, ids(all[:7]), ids(top), "a limit keeps the head of the full ranking")
}

func TestRankAll_TieBreakByID(t *testing.T) {
	e := newTestEngine(t, newMemoryStore(candidate("c"), candidate("a"), candidate("b")))

	results, err := e.RankAll(context.Background(), RankAllOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids(results))
}

func TestRankAll_SortedDescending(t *testing.T) {
	r := rand.New(rand.NewSource(99))
	var candidates []models.Candidate
	for i := 0; i < 200; i++ {
		candidates = append(candidates, randomCandidate(r, fmt.Sprintf("f%03d", i)))
	}
	e := newTestEngine(t, newMemoryStore(candidates...))

	results, err := e.RankAll(context.Background(), RankAllOptions{})
	require.NoError(t, err)
	for i := 1; i < len(results); i++ {
		require.GreaterOrEqual(t, results[i-1].RankScore, results[i].RankScore)
	}
}

func TestRankAll_DropsDuplicateCandidates(t *testing.T) {
	first := candidate("dup", withRating(5, 10))
	second := candidate("dup", withRating(1, 1))
	e := newTestEngine(t, newMemoryStore(first, second, candidate("other")))

	results, err := e.RankAll(context.Background(), RankAllOptions{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 5.0, *results[0].Freelancer.Rating, "first occurrence wins")
}

func TestRankAll_UsesInjectedClockOnce(t *testing.T) {
	calls := 0
	clockNow := time.Date(2030, time.January, 10, 0, 0, 0, 0, time.UTC)
	store := newMemoryStore(
		candidate("a", func(c *models.Candidate) { c.Freelancer.UpdatedAt = timePtr(clockNow.Add(-48 * time.Hour)) }),
		candidate("b", func(c *models.Candidate) { c.Freelancer.UpdatedAt = timePtr(clockNow.Add(-20 * 24 * time.Hour)) }),
	)
	e, err := NewEngine(EngineConfig{
		Weights: DefaultWeights(),
		Clock: func() time.Time {
			calls++
			return clockNow
		},
	}, store, logger.NewTestLogger(t))
	require.NoError(t, err)

	results, err := e.RankAll(context.Background(), RankAllOptions{})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1.10, results[0].Score.ActivityMultiplier)
	assert.Equal(t, 1.05, results[1].Score.ActivityMultiplier)
}

func TestRankAll_FetchErrorPropagates(t *testing.T) {
	boom := errors.New("connection refused")
	store := newMemoryStore(candidate("a"))
	store.fetchErr = boom
	e := newTestEngine(t, store)

	results, err := e.RankAll(context.Background(), RankAllOptions{})
	assert.Nil(t, results)
	assert.ErrorIs(t, err, boom)
}

func TestRecommendForJob_UnknownJob(t *testing.T) {
	store := newMemoryStore(candidate("a"), candidate("b"))
	e := newTestEngine(t, store)

	results, err := e.RecommendForJob(context.Background(), "missing-job", RecommendOptions{})
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
	assert.Zero(t, store.fetchCalled, "candidates are not fetched without a job")
}

func TestRecommendForJob_ScoresAgainstJob(t *testing.T) {
	store := newMemoryStore(
		candidate("match", withSkills("React", "Node.js"), withRate(25), withRating(4, 5)),
		candidate("partial", withSkills("React"), withRate(25), withRating(4, 5)),
		candidate("none", withSkills("COBOL"), withRate(25), withRating(4, 5)),
		candidate("unrated", withSkills("React", "Node")),
	)
	store.jobs["job-1"] = models.Job{ID: "job-1", Skills: []string{"react", "node"}, Budget: floatPtr(1000)}
	e := newTestEngine(t, store)

	results, err := e.RecommendForJob(context.Background(), "job-1", RecommendOptions{MinRating: floatPtr(3.5)})
	require.NoError(t, err)

	assert.Equal(t, []string{"match", "partial", "none"}, ids(results))
	assert.InDelta(t, 100, results[0].Score.JobMatch, 1e-9)
	assert.InDelta(t, 0.7*50+0.3*100, results[1].Score.JobMatch, 1e-9)
	assert.InDelta(t, 30, results[2].Score.JobMatch, 1e-9)
}

func TestRecommendForJob_DefaultLimit(t *testing.T) {
	var candidates []models.Candidate
	for i := 0; i < 25; i++ {
		candidates = append(candidates, candidate(fmt.Sprintf("f%02d", i)))
	}
	store := newMemoryStore(candidates...)
	store.jobs["job-1"] = models.Job{ID: "job-1"}
	e := newTestEngine(t, store)
	ctx := context.Background()

	results, err := e.RecommendForJob(ctx, "job-1", RecommendOptions{})
	require.NoError(t, err)
	assert.Len(t, results, 20)

	results, err = e.RecommendForJob(ctx, "job-1", RecommendOptions{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestRecommendForJob_JobFetchError(t *testing.T) {
	store := newMemoryStore()
	store.jobErr = errors.New("timeout")
	e := newTestEngine(t, store)

	_, err := e.RecommendForJob(context.Background(), "job-1", RecommendOptions{})
	assert.ErrorIs(t, err, store.jobErr)
}

func TestFindSimilar(t *testing.T) {
	ref := candidate("ref", withSkills("React", "Node"), withRate(50), withTitle("Full Stack Developer"))
	store := newMemoryStore(
		ref,
		candidate("twin", withSkills("react developer", "node.js"), withRate(50), withTitle("full stack developer")),
		candidate("cousin", withSkills("React"), withRate(60), withTitle("Frontend Developer")),
		candidate("stranger", withSkills("Accounting"), withRate(200)),
	)
	e := newTestEngine(t, store)

	results, err := e.FindSimilar(context.Background(), "ref", SimilarOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"twin", "cousin", "stranger"}, ids(results))
	assert.Equal(t, "ref", store.filters[0].ExcludeID)

	twin := results[0]
	require.NotNil(t, twin.SimilarityScore)
	assert.InDelta(t, 100, *twin.SimilarityScore, 1e-9)
	assert.InDelta(t, 0.6*100+0.4*twin.Score.FinalScore, twin.RankScore, 1e-9)

	for _, r := range results {
		assert.NotEqual(t, "ref", r.Freelancer.ID)
	}
}

func TestFindSimilar_ExcludesReferenceEvenIfStoreReturnsIt(t *testing.T) {
	ref := candidate("ref", withSkills("go"))
	e := newTestEngine(t, &unfilteredStore{memoryStore: newMemoryStore(ref, candidate("other", withSkills("go")))})

	results, err := e.FindSimilar(context.Background(), "ref", SimilarOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"other"}, ids(results))
}

func TestFindSimilar_UnknownReference(t *testing.T) {
	e := newTestEngine(t, newMemoryStore(candidate("a")))

	results, err := e.FindSimilar(context.Background(), "ghost", SimilarOptions{})
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestFindSimilar_DefaultLimit(t *testing.T) {
	candidates := []models.Candidate{candidate("ref", withSkills("go"))}
	for i := 0; i < 9; i++ {
		candidates = append(candidates, candidate(fmt.Sprintf("f%d", i), withSkills("go")))
	}
	e := newTestEngine(t, newMemoryStore(candidates...))

	results, err := e.FindSimilar(context.Background(), "ref", SimilarOptions{})
	require.NoError(t, err)
	assert.Len(t, results, 5)

	results, err = e.FindSimilar(context.Background(), "ref", SimilarOptions{Limit: 8})
	require.NoError(t, err)
	assert.Len(t, results, 8)
}

func searchFixture() *memoryStore {
	return newMemoryStore(
		candidate("ux", withName("Dana Smith"), withTitle("UX Designer"), withSkills("Figma"), withRate(60), withRating(4.5, 3)),
		candidate("bio", withName("Lee Park"), withBio("I love graphic design and branding"), withSkills("Illustrator"), withRate(40), withRating(4.0, 3)),
		candidate("skill", withName("Ana Ruiz"), withSkills("Web Design", "CSS"), withRate(80), withRating(3.5, 3)),
		candidate("name", withName("Designa Jones"), withSkills("Excel"), withRate(20)),
		candidate("dev", withName("Sam Go"), withTitle("Backend Engineer"), withSkills("Go", "SQL"), withRate(100), withRating(5, 3)),
	)
}

func TestSearchAndRank_Query(t *testing.T) {
	e := newTestEngine(t, searchFixture())

	results, err := e.SearchAndRank(context.Background(), SearchOptions{Query: "design"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ux", "bio", "skill", "name"}, ids(results))

	results, err = e.SearchAndRank(context.Background(), SearchOptions{Query: "   "})
	require.NoError(t, err)
	assert.Len(t, results, 5, "blank query does not filter")
}

func TestSearchAndRank_CategoryAndSkills(t *testing.T) {
	e := newTestEngine(t, searchFixture())
	ctx := context.Background()

	results, err := e.SearchAndRank(ctx, SearchOptions{Category: AllCategories})
	require.NoError(t, err)
	assert.Len(t, results, 5)

	results, err = e.SearchAndRank(ctx, SearchOptions{Category: "design"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ux", "skill"}, ids(results), "category looks at title and skills only")

	results, err = e.SearchAndRank(ctx, SearchOptions{Query: "design", Skills: []string{"css", "figma"}, Category: "web"})
	require.NoError(t, err)
	assert.Equal(t, []string{"skill"}, ids(results))
}

func TestSearchAndRank_FetchBounds(t *testing.T) {
	store := searchFixture()
	e := newTestEngine(t, store)

	results, err := e.SearchAndRank(context.Background(), SearchOptions{
		MinRate:   floatPtr(40),
		MaxRate:   floatPtr(80),
		MinRating: floatPtr(3.5),
		Limit:     2,
	})
	require.NoError(t, err)

	filter := store.filters[0]
	assert.Equal(t, 40.0, *filter.MinRate)
	assert.Equal(t, 80.0, *filter.MaxRate)
	assert.Equal(t, 3.5, *filter.MinRating)
	assert.False(t, filter.AvailableOnly)

	require.Len(t, results, 2)
	for _, r := range results {
		assert.Contains(t, []string{"ux", "bio", "skill"}, r.Freelancer.ID, "bounds are inclusive")
	}
}

func TestFetchFilter_Matches(t *testing.T) {
	c := candidate("a", withRating(4, 1), withRate(50), available())

	assert.True(t, FetchFilter{}.Matches(c))
	assert.True(t, FetchFilter{MinRating: floatPtr(4), MinRate: floatPtr(50), MaxRate: floatPtr(50), AvailableOnly: true}.Matches(c))
	assert.False(t, FetchFilter{MinRating: floatPtr(4.1)}.Matches(c))
	assert.False(t, FetchFilter{MaxRate: floatPtr(49.99)}.Matches(c))
	assert.False(t, FetchFilter{ExcludeID: "a"}.Matches(c))
	assert.False(t, FetchFilter{AvailableOnly: true}.Matches(candidate("b")))
	assert.False(t, FetchFilter{MinRate: floatPtr(1)}.Matches(candidate("b")), "missing rate fails a rate bound")
}

// unfilteredStore ignores ExcludeID to prove the engine drops the
// reference on its own.
type unfilteredStore struct {
	*memoryStore
}

func (u *unfilteredStore) FetchFreelancers(ctx context.Context, filter FetchFilter) ([]models.Candidate, error) {
	filter.ExcludeID = ""
	return u.memoryStore.FetchFreelancers(ctx, filter)
}
