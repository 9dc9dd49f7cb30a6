// Package rankjob holds the job plumbing shared by the ranking workers:
// input decoding, the result envelope, error classification and completion.
package rankjob

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"freelancer-ranking/internal/common/camunda"
	"freelancer-ranking/internal/common/errors"
	"freelancer-ranking/internal/common/validation"
	"freelancer-ranking/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

// Output is the envelope every ranking worker completes its job with.
type Output struct {
	RankingID   string                `json:"rankingId"`
	Results     []models.RankedResult `json:"results"`
	Count       int                   `json:"count"`
	GeneratedAt string                `json:"generatedAt"`
}

// NewOutput wraps results, never leaving Results nil so the process sees [].
func NewOutput(results []models.RankedResult, now time.Time) *Output {
	if results == nil {
		results = []models.RankedResult{}
	}
	return &Output{
		RankingID:   uuid.NewString(),
		Results:     results,
		Count:       len(results),
		GeneratedAt: now.UTC().Format(time.RFC3339),
	}
}

// Variables returns the process variables written on completion.
func (o *Output) Variables() map[string]interface{} {
	return map[string]interface{}{
		"rankingId":   o.RankingID,
		"results":     o.Results,
		"count":       o.Count,
		"generatedAt": o.GeneratedAt,
	}
}

// ParseInput validates the job variables against schema and decodes them
// into target. Every failure is an INVALID_RANKING_INPUT error.
func ParseInput(job entities.Job, schema validation.JSONSchema, target interface{}) error {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return errors.NewInvalidRankingInputError(fmt.Sprintf("failed to parse job variables: %v", err))
	}

	result := validation.ValidateInput(variables, schema)
	if !result.Valid {
		return errors.NewInvalidRankingInputError(strings.Join(result.GetErrorMessages(), "; "))
	}

	if err := validation.Decode(variables, target); err != nil {
		return errors.NewInvalidRankingInputError(fmt.Sprintf("failed to decode job variables: %v", err))
	}
	return nil
}

// EngineError classifies an error returned by the ranking engine. Fetch
// errors already carry a code and pass through unchanged.
func EngineError(mode string, err error) error {
	if _, ok := errors.AsStandardError(err); ok {
		return err
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewRankingTimeoutError(mode, err)
	}
	return errors.NewRankingFailedError(mode, err)
}

// Complete sends the completion for job, retrying transient gateway errors.
func Complete(ctx context.Context, client worker.JobClient, job entities.Job, output *Output, retry *camunda.RetryConfig) error {
	variables := output.Variables()
	return camunda.ExecuteWithRetry(ctx, retry, "complete-job", func(ctx context.Context) error {
		request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromMap(variables)
		if err != nil {
			return err
		}
		_, err = request.Send(ctx)
		return err
	})
}
