package main

import (
	"context"
	"fmt"
	"time"

	"freelancer-ranking/internal/common/config"
	"freelancer-ranking/internal/common/database"
	"freelancer-ranking/internal/common/logger"
	"freelancer-ranking/internal/ranking"
	"freelancer-ranking/internal/store"
)

// healthCheck reports whether one dependency is reachable.
type healthCheck func(ctx context.Context) error

// sources is the opened data layer: the store chain the engine reads and
// the connections behind it.
type sources struct {
	Store ranking.Store

	checks  map[string]healthCheck
	closers []func() error
	logger  logger.Logger
}

// openSources connects the configured candidate source and, when enabled,
// wraps it in the Redis cache. Each connection is retried at startup.
func openSources(ctx context.Context, cfg *config.Config, log logger.Logger) (*sources, error) {
	s := &sources{checks: make(map[string]healthCheck), logger: log}

	switch cfg.Ranking.Source {
	case config.SourceElasticsearch:
		var es *database.ElasticsearchClient
		err := database.RetryWithBackoff(ctx, func(ctx context.Context) error {
			var err error
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch, nil)
			if err != nil {
				return err
			}
			return es.Ping(ctx)
		}, 15, 2*time.Second, log, "Elasticsearch connection")
		if err != nil {
			return nil, err
		}
		log.Info("Elasticsearch connected successfully", nil)

		s.checks["elasticsearch"] = es.Ping
		s.Store = store.NewElasticsearchStore(es.Client, store.ElasticsearchStoreOptions{
			FreelancerIndex: cfg.Ranking.FreelancerIndex,
			JobIndex:        cfg.Ranking.JobIndex,
			PageSize:        cfg.Ranking.PageSize,
		}, log)

	case config.SourcePostgres:
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, err
		}
		err = database.RetryWithBackoff(ctx, pg.Ping, 15, 2*time.Second, log, "PostgreSQL connection")
		if err != nil {
			pg.Close()
			return nil, err
		}
		log.Info("PostgreSQL connected successfully", nil)

		s.checks["postgres"] = pg.Ping
		s.closers = append(s.closers, pg.Close)
		s.Store = store.NewPostgresStore(pg.DB, cfg.Ranking.PageSize, log)

	default:
		return nil, fmt.Errorf("unknown ranking source %q", cfg.Ranking.Source)
	}

	if cfg.Ranking.Cache.Enabled {
		rdb := database.NewRedis(cfg.Database.Redis)
		err := database.RetryWithBackoff(ctx, rdb.Ping, 10, 2*time.Second, log, "Redis connection")
		if err != nil {
			rdb.Close()
			s.Close()
			return nil, err
		}
		log.Info("Redis connected successfully", nil)

		s.checks["redis"] = rdb.Ping
		s.closers = append(s.closers, rdb.Close)
		s.Store = store.NewCachedStore(s.Store, rdb.Client, store.CacheOptions{
			TTL:    cfg.Ranking.Cache.TTLDuration(),
			Prefix: cfg.Ranking.Cache.Prefix,
		}, log)
	}

	return s, nil
}

// Checks returns a copy of the readiness checks for the opened connections.
func (s *sources) Checks() map[string]healthCheck {
	out := make(map[string]healthCheck, len(s.checks)+1)
	for name, check := range s.checks {
		out[name] = check
	}
	return out
}

// Close releases connections in reverse order of opening.
func (s *sources) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.logger.Warn("error closing connection", map[string]interface{}{"error": err.Error()})
		}
	}
	s.closers = nil
}
