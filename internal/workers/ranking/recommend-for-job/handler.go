package recommendforjob

import (
	"context"
	"fmt"
	"time"

	"freelancer-ranking/internal/common/camunda"
	"freelancer-ranking/internal/common/config"
	"freelancer-ranking/internal/common/errors"
	"freelancer-ranking/internal/common/logger"
	"freelancer-ranking/internal/common/observability"
	"freelancer-ranking/internal/ranking"
	"freelancer-ranking/internal/workers/ranking/rankjob"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

const TaskType = "recommend-freelancers-for-job"

type Handler struct {
	config       *rankjob.Config
	logger       logger.Logger
	service      Service
	errorHandler *errors.ErrorHandler
	obs          *observability.Observability
	clock        func() time.Time
	jobWorker    worker.JobWorker
}

type HandlerOptions struct {
	AppConfig     *config.Config
	Service       Service
	CustomConfig  *rankjob.Config
	Observability *observability.Observability
	Logger        logger.Logger
	Clock         func() time.Time
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := rankjob.ConfigFromApp(opts.AppConfig, TaskType, opts.CustomConfig)
	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Service == nil {
		return nil, fmt.Errorf("%s: ranking service is required", TaskType)
	}

	loggerInstance := opts.Logger
	if loggerInstance == nil {
		loggerInstance = logger.NewStructured("info", "json")
	}
	loggerInstance = loggerInstance.WithFields(map[string]interface{}{"taskType": TaskType})

	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Handler{
		config:       workerConfig,
		logger:       loggerInstance,
		service:      opts.Service,
		errorHandler: errors.NewErrorHandler(loggerInstance),
		obs:          opts.Observability,
		clock:        clock,
	}, nil
}

// Handle recommends freelancers for the job named in the variables. An
// unknown job completes with an empty list.
func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parseInput(job)
	if err != nil {
		return h.failJob(ctx, client, job, err)
	}

	log := h.logger.WithFields(map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
		"jobId":              input.JobID,
	})
	log.Info("Processing recommendation request", nil)

	output, err := h.Execute(ctx, input)
	if err != nil {
		return h.failJob(ctx, client, job, err)
	}

	if err := rankjob.Complete(ctx, client, job, output, nil); err != nil {
		log.Error("Failed to complete job", map[string]interface{}{"error": err.Error()})
		return err
	}

	h.obs.RecordRankedResults(ctx, TaskType, output.Count)
	log.Info("Recommendations completed", map[string]interface{}{
		"rankingId": output.RankingID,
		"count":     output.Count,
	})
	return nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*rankjob.Output, error) {
	results, err := h.service.RecommendForJob(ctx, input.JobID, ranking.RecommendOptions{
		MinRating: input.MinRating,
		Limit:     input.Limit,
	})
	if err != nil {
		return nil, rankjob.EngineError(ranking.ModeRecommend, err)
	}
	return rankjob.NewOutput(results, h.clock()), nil
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	var input Input
	if err := rankjob.ParseInput(job, GetInputSchema(), &input); err != nil {
		return nil, err
	}
	return &input, nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) error {
	if sendErr := h.errorHandler.HandleJobError(ctx, client, job, err); sendErr != nil {
		h.logger.Error("Failed to report job failure", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  sendErr.Error(),
		})
	}
	return err
}

func (h *Handler) Register(client zbc.Client) error {
	if !h.config.Enabled {
		h.logger.Info("Worker is disabled, skipping registration", nil)
		return nil
	}
	h.jobWorker = camunda.StartWorker(client, h, h.config.WorkerConfig(), h.obs, h.logger)
	return nil
}

func (h *Handler) Close() {
	if h.jobWorker != nil {
		h.jobWorker.Close()
		h.jobWorker = nil
	}
}

func (h *Handler) GetTaskType() string {
	return TaskType
}

func (h *Handler) IsEnabled() bool {
	return h.config.Enabled
}

func (h *Handler) GetConfig() *rankjob.Config {
	return h.config
}
