// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"

	"freelancer-ranking/internal/common/camunda"
	"freelancer-ranking/internal/common/config"
	"freelancer-ranking/internal/common/logger"
	"freelancer-ranking/internal/common/observability"
	"freelancer-ranking/internal/ranking"

	fs "freelancer-ranking/internal/workers/ranking/find-similar"
	rf "freelancer-ranking/internal/workers/ranking/rank-freelancers"
	rj "freelancer-ranking/internal/workers/ranking/recommend-for-job"
	sf "freelancer-ranking/internal/workers/ranking/search-freelancers"
)

// rankingWorker is what every ranking worker package exposes to the manager.
type rankingWorker interface {
	camunda.JobHandler
	Register(client zbc.Client) error
	Close()
	IsEnabled() bool
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"env":     cfg.App.Environment,
	})

	obs, err := observability.New(cfg.App.Name, cfg.App.Version)
	if err != nil {
		log.Warn("otel metrics disabled", map[string]interface{}{"error": err.Error()})
	}
	defer obs.Shutdown(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Zeebe client with retry ---
	zeebe, err := camunda.NewClientWithConfig(ctx, camunda.ConfigFromApp(cfg.Camunda), log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer zeebe.Close()

	// --- Store chain ---
	sources, err := openSources(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("ranking store unavailable", zap.Error(err))
	}
	defer sources.Close()

	// --- Engine ---
	weights := ranking.DefaultWeights().Merge(weightsFromConfig(cfg.Ranking.Weights))
	engine, err := ranking.NewEngine(ranking.EngineConfig{
		Weights:               weights,
		DefaultRecommendLimit: cfg.Ranking.DefaultRecommendLimit,
		DefaultSimilarLimit:   cfg.Ranking.DefaultSimilarLimit,
	}, sources.Store, log)
	if err != nil {
		zapLog.Fatal("ranking engine misconfigured", zap.Error(err))
	}
	log.Info("Ranking engine ready", map[string]interface{}{
		"source":  cfg.Ranking.Source,
		"cache":   cfg.Ranking.Cache.Enabled,
		"weights": weights,
	})

	// --- Workers ---
	workers, err := buildWorkers(cfg, engine, obs, log)
	if err != nil {
		zapLog.Fatal("worker setup failed", zap.Error(err))
	}

	registered := 0
	for _, w := range workers {
		if !w.IsEnabled() {
			log.Info("worker disabled", map[string]interface{}{"taskType": w.GetTaskType()})
			continue
		}
		if err := w.Register(zeebe.GetClient()); err != nil {
			zapLog.Fatal("worker registration failed", zap.String("taskType", w.GetTaskType()), zap.Error(err))
		}
		registered++
	}
	log.Info("Workers registered", map[string]interface{}{"count": registered})

	// --- Health & Metrics Server ---
	checks := sources.Checks()
	checks["zeebe"] = zeebe.HealthCheck
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:           newHealthMux(cfg.Metrics.Path, checks),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("Health/Metrics server listening", map[string]interface{}{"addr": server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Health/Metrics server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	log.Info("Shutdown signal received, stopping workers...", nil)

	for _, w := range workers {
		w.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Error stopping health server", map[string]interface{}{"error": err.Error()})
	}

	log.Info("Worker manager stopped", nil)
}

func buildWorkers(cfg *config.Config, engine *ranking.Engine, obs *observability.Observability, log logger.Logger) ([]rankingWorker, error) {
	rank, err := rf.NewHandler(rf.HandlerOptions{AppConfig: cfg, Service: engine, Observability: obs, Logger: log})
	if err != nil {
		return nil, err
	}
	recommend, err := rj.NewHandler(rj.HandlerOptions{AppConfig: cfg, Service: engine, Observability: obs, Logger: log})
	if err != nil {
		return nil, err
	}
	similar, err := fs.NewHandler(fs.HandlerOptions{AppConfig: cfg, Service: engine, Observability: obs, Logger: log})
	if err != nil {
		return nil, err
	}
	search, err := sf.NewHandler(sf.HandlerOptions{AppConfig: cfg, Service: engine, Observability: obs, Logger: log})
	if err != nil {
		return nil, err
	}
	return []rankingWorker{rank, recommend, similar, search}, nil
}

func weightsFromConfig(w config.WeightsConfig) ranking.WeightOverrides {
	return ranking.WeightOverrides{
		ProfileQuality: w.ProfileQuality,
		Performance:    w.Performance,
		Experience:     w.Experience,
		Reputation:     w.Reputation,
		JobMatch:       w.JobMatch,
		Recency:        w.Recency,
	}
}
