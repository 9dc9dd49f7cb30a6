package store

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"freelancer-ranking/internal/common/logger"
	"freelancer-ranking/internal/common/metrics"
	"freelancer-ranking/internal/models"
	"freelancer-ranking/internal/ranking"

	"github.com/redis/go-redis/v9"
)

// Cache lookup results, used as metric labels.
const (
	cacheHit   = "hit"
	cacheMiss  = "miss"
	cacheError = "error"
)

const (
	kindJob        = "job"
	kindFreelancer = "freelancer"
)

// CachedStore is a read-through Redis cache for single-record lookups.
// Candidate lists always go to the wrapped store, absent records are never
// cached, and a Redis failure falls back to the wrapped store.
//
// Entries live under <prefix>:job:<id> and <prefix>:freelancer:<id>. This
// service only reads, so a cached record can be up to one TTL behind the
// source; the service that writes freelancers and jobs owns invalidation,
// by calling Invalidate or deleting those keys itself.
type CachedStore struct {
	next   ranking.Store
	rdb    redis.Cmdable
	ttl    time.Duration
	prefix string
	logger logger.Logger
}

var _ ranking.Store = (*CachedStore)(nil)

// CacheOptions configures key prefix and expiry.
type CacheOptions struct {
	TTL    time.Duration
	Prefix string
}

func NewCachedStore(next ranking.Store, rdb redis.Cmdable, opts CacheOptions, log logger.Logger) *CachedStore {
	s := &CachedStore{
		next:   next,
		rdb:    rdb,
		ttl:    opts.TTL,
		prefix: opts.Prefix,
		logger: logger.Component(log, "cached-store"),
	}
	if s.ttl <= 0 {
		s.ttl = 5 * time.Minute
	}
	if s.prefix == "" {
		s.prefix = "ranking"
	}
	return s
}

func (s *CachedStore) FetchFreelancers(ctx context.Context, filter ranking.FetchFilter) ([]models.Candidate, error) {
	return s.next.FetchFreelancers(ctx, filter)
}

func (s *CachedStore) FetchJob(ctx context.Context, id string) (*models.Job, error) {
	return readThrough(ctx, s, kindJob, id, func() (*models.Job, error) {
		return s.next.FetchJob(ctx, id)
	})
}

func (s *CachedStore) FetchFreelancerByID(ctx context.Context, id string) (*models.Candidate, error) {
	return readThrough(ctx, s, kindFreelancer, id, func() (*models.Candidate, error) {
		return s.next.FetchFreelancerByID(ctx, id)
	})
}

// Invalidate drops any cached copy of the given jobs and freelancers. It is
// meant for writers sharing this cache; nothing in the ranking path calls it.
func (s *CachedStore) Invalidate(ctx context.Context, jobIDs, freelancerIDs []string) error {
	keys := make([]string, 0, len(jobIDs)+len(freelancerIDs))
	for _, id := range jobIDs {
		keys = append(keys, s.key(kindJob, id))
	}
	for _, id := range freelancerIDs {
		keys = append(keys, s.key(kindFreelancer, id))
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate cache: %w", err)
	}
	return nil
}

func (s *CachedStore) key(kind, id string) string {
	return s.prefix + ":" + kind + ":" + id
}

func readThrough[T any](ctx context.Context, s *CachedStore, kind, id string, load func() (*T, error)) (*T, error) {
	key := s.key(kind, id)

	raw, err := s.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached T
		jsonErr := json.Unmarshal(raw, &cached)
		if jsonErr == nil {
			metrics.StoreCacheLookups.WithLabelValues(kind, cacheHit).Inc()
			return &cached, nil
		}
		metrics.StoreCacheLookups.WithLabelValues(kind, cacheError).Inc()
		s.logger.Warn("discarding unreadable cache entry", map[string]interface{}{"key": key, "error": jsonErr.Error()})
	case stderrors.Is(err, redis.Nil):
		metrics.StoreCacheLookups.WithLabelValues(kind, cacheMiss).Inc()
	default:
		metrics.StoreCacheLookups.WithLabelValues(kind, cacheError).Inc()
		s.logger.Warn("cache read failed, using store", map[string]interface{}{"key": key, "error": err.Error()})
	}

	value, err := load()
	if err != nil || value == nil {
		return value, err
	}

	payload, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("cache encode failed", map[string]interface{}{"key": key, "error": err.Error()})
		return value, nil
	}
	if err := s.rdb.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		s.logger.Warn("cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
	return value, nil
}
