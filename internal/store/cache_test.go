package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"freelancer-ranking/internal/common/logger"
	"freelancer-ranking/internal/common/metrics"
	"freelancer-ranking/internal/models"
	"freelancer-ranking/internal/ranking"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore is a fixed backing store that counts lookups.
type countingStore struct {
	jobs        map[string]models.Job
	freelancers map[string]models.Candidate
	err         error

	jobCalls, freelancerCalls, listCalls int
}

func (c *countingStore) FetchFreelancers(_ context.Context, filter ranking.FetchFilter) ([]models.Candidate, error) {
	c.listCalls++
	var out []models.Candidate
	for _, cand := range c.freelancers {
		if filter.Matches(cand) {
			out = append(out, cand)
		}
	}
	return out, c.err
}

func (c *countingStore) FetchJob(_ context.Context, id string) (*models.Job, error) {
	c.jobCalls++
	if c.err != nil {
		return nil, c.err
	}
	job, ok := c.jobs[id]
	if !ok {
		return nil, nil
	}
	return &job, nil
}

func (c *countingStore) FetchFreelancerByID(_ context.Context, id string) (*models.Candidate, error) {
	c.freelancerCalls++
	if c.err != nil {
		return nil, c.err
	}
	cand, ok := c.freelancers[id]
	if !ok {
		return nil, nil
	}
	return &cand, nil
}

func newBacking() *countingStore {
	budget, rating := 800.0, 4.7
	updated := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	return &countingStore{
		jobs: map[string]models.Job{
			"job-1": {ID: "job-1", Skills: []string{"go"}, Budget: &budget},
		},
		freelancers: map[string]models.Candidate{
			"f-1": {
				Freelancer: models.Freelancer{ID: "f-1", Skills: []string{"go"}, Rating: &rating, Status: "available", UpdatedAt: &updated},
				Profile:    models.Profile{ID: "p-1", FullName: "Ken Thompson"},
			},
		},
	}
}

func newMiniredisStore(t *testing.T, backing ranking.Store) (*CachedStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewCachedStore(backing, rdb, CacheOptions{TTL: time.Minute, Prefix: "test"}, logger.NewTestLogger(t)), mr
}

func TestCachedStore_JobReadThrough(t *testing.T) {
	backing := newBacking()
	store, mr := newMiniredisStore(t, backing)
	ctx := context.Background()
	hits := testutil.ToFloat64(metrics.StoreCacheLookups.WithLabelValues(kindJob, cacheHit))

	first, err := store.FetchJob(ctx, "job-1")
	require.NoError(t, err)
	second, err := store.FetchJob(ctx, "job-1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, backing.jobCalls)
	assert.True(t, mr.Exists("test:job:job-1"))
	assert.Equal(t, time.Minute, mr.TTL("test:job:job-1"))
	assert.Equal(t, hits+1, testutil.ToFloat64(metrics.StoreCacheLookups.WithLabelValues(kindJob, cacheHit)))

	mr.FastForward(2 * time.Minute)
	_, err = store.FetchJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, 2, backing.jobCalls, "expired entries reload")
}

func TestCachedStore_FreelancerRoundTrip(t *testing.T) {
	backing := newBacking()
	store, _ := newMiniredisStore(t, backing)
	ctx := context.Background()

	_, err := store.FetchFreelancerByID(ctx, "f-1")
	require.NoError(t, err)
	cached, err := store.FetchFreelancerByID(ctx, "f-1")
	require.NoError(t, err)

	assert.Equal(t, 1, backing.freelancerCalls)
	assert.Equal(t, "Ken Thompson", cached.Profile.FullName)
	assert.Equal(t, 4.7, *cached.Freelancer.Rating)
	assert.True(t, cached.Freelancer.UpdatedAt.Equal(*backing.freelancers["f-1"].Freelancer.UpdatedAt))
}

func TestCachedStore_AbsentRecordsAreNotCached(t *testing.T) {
	backing := newBacking()
	store, mr := newMiniredisStore(t, backing)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		job, err := store.FetchJob(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, job)
	}
	assert.Equal(t, 2, backing.jobCalls)
	assert.False(t, mr.Exists("test:job:missing"))
}

func TestCachedStore_ListsBypassCache(t *testing.T) {
	backing := newBacking()
	store, mr := newMiniredisStore(t, backing)

	for i := 0; i < 2; i++ {
		got, err := store.FetchFreelancers(context.Background(), ranking.FetchFilter{})
		require.NoError(t, err)
		assert.Len(t, got, 1)
	}
	assert.Equal(t, 2, backing.listCalls)
	assert.Empty(t, mr.Keys())
}

func TestCachedStore_BackingErrorPropagates(t *testing.T) {
	backing := newBacking()
	backing.err = errors.New("db down")
	store, mr := newMiniredisStore(t, backing)

	_, err := store.FetchJob(context.Background(), "job-1")
	assert.ErrorIs(t, err, backing.err)
	assert.Empty(t, mr.Keys())
}

func TestCachedStore_CorruptEntryReloads(t *testing.T) {
	backing := newBacking()
	store, mr := newMiniredisStore(t, backing)
	require.NoError(t, mr.Set("test:job:job-1", "{not json"))

	job, err := store.FetchJob(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, "job-1", job.ID)
	assert.Equal(t, 1, backing.jobCalls)

	raw, err := mr.Get("test:job:job-1")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(raw)), "entry is rewritten")
}

func TestCachedStore_RedisFailureFallsBack(t *testing.T) {
	backing := newBacking()
	rdb, mock := redismock.NewClientMock()
	store := NewCachedStore(backing, rdb, CacheOptions{TTL: 30 * time.Second}, logger.NewTestLogger(t))

	payload, err := json.Marshal(backing.jobs["job-1"])
	require.NoError(t, err)

	mock.ExpectGet("ranking:job:job-1").SetErr(errors.New("connection refused"))
	mock.ExpectSet("ranking:job:job-1", payload, 30*time.Second).SetErr(errors.New("connection refused"))

	job, err := store.FetchJob(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, "job-1", job.ID)
	assert.Equal(t, 1, backing.jobCalls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedStore_Invalidate(t *testing.T) {
	backing := newBacking()
	store, mr := newMiniredisStore(t, backing)
	ctx := context.Background()

	_, err := store.FetchJob(ctx, "job-1")
	require.NoError(t, err)
	_, err = store.FetchFreelancerByID(ctx, "f-1")
	require.NoError(t, err)
	require.Len(t, mr.Keys(), 2)

	require.NoError(t, store.Invalidate(ctx, []string{"job-1"}, []string{"f-1"}))
	assert.Empty(t, mr.Keys())
	assert.NoError(t, store.Invalidate(ctx, nil, nil))
}

func TestCachedStore_WriterDeletesKeyDirectly(t *testing.T) {
	backing := newBacking()
	store, mr := newMiniredisStore(t, backing)
	ctx := context.Background()

	_, err := store.FetchFreelancerByID(ctx, "f-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"test:freelancer:f-1"}, mr.Keys())

	updated := backing.freelancers["f-1"]
	updated.Profile.FullName = "Ken Thompson Jr."
	backing.freelancers["f-1"] = updated

	stale, err := store.FetchFreelancerByID(ctx, "f-1")
	require.NoError(t, err)
	assert.Equal(t, "Ken Thompson", stale.Profile.FullName, "served from cache until invalidated")

	mr.Del("test:freelancer:f-1")
	fresh, err := store.FetchFreelancerByID(ctx, "f-1")
	require.NoError(t, err)
	assert.Equal(t, "Ken Thompson Jr.", fresh.Profile.FullName)
	assert.Equal(t, 2, backing.freelancerCalls)
}
