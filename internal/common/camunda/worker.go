// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"freelancer-ranking/internal/common/config"
	"freelancer-ranking/internal/common/errors"
	"freelancer-ranking/internal/common/logger"
	"freelancer-ranking/internal/common/metrics"
	"freelancer-ranking/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler processes one job and reports its outcome to the broker. The
// returned error only describes what happened; the handler has already
// completed or failed the job.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job) error
	GetTaskType() string
}

// Job outcome labels.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// StartWorker opens a job worker for handler and instruments every job.
func StartWorker(client zbc.Client, handler JobHandler, wcfg config.WorkerConfig, obs *observability.Observability, log logger.Logger) worker.JobWorker {
	taskType := handler.GetTaskType()
	log = logger.Component(log, "job-worker").WithFields(map[string]interface{}{"taskType": taskType})

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(Instrument(handler, obs, log)).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started", map[string]interface{}{
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeoutMs":     wcfg.Timeout,
	})
	return jobWorker
}

// Instrument wraps handler with the active-jobs gauge, duration and outcome
// metrics on both the Prometheus and OTel pipelines.
func Instrument(handler JobHandler, obs *observability.Observability, log logger.Logger) worker.JobHandler {
	taskType := handler.GetTaskType()

	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		defer metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()

		err := handler.Handle(client, job)
		elapsed := time.Since(start)
		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())

		status := StatusCompleted
		if err != nil {
			status = StatusFailed
			code := string(errors.Normalize(err).Code)
			metrics.WorkerJobsFailed.WithLabelValues(taskType, code).Inc()
			log.Warn("job finished with error", map[string]interface{}{
				"jobKey":    job.GetKey(),
				"errorCode": code,
				"error":     err.Error(),
			})
		} else {
			metrics.WorkerJobsCompleted.WithLabelValues(taskType).Inc()
		}

		ctx := context.Background()
		obs.RecordJobProcessed(ctx, taskType, status)
		obs.RecordJobDuration(ctx, taskType, elapsed, status)
	}
}
