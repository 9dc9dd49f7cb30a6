package rankfreelancers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"freelancer-ranking/internal/common/camunda/camundatest"
	"freelancer-ranking/internal/common/config"
	"freelancer-ranking/internal/common/errors"
	"freelancer-ranking/internal/common/logger"
	"freelancer-ranking/internal/models"
	"freelancer-ranking/internal/ranking"
	"freelancer-ranking/internal/workers/ranking/rankjob"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Service Implementation
// ==========================

type MockService struct {
	mock.Mock
}

func (m *MockService) RankAll(ctx context.Context, opts ranking.RankAllOptions) ([]models.RankedResult, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RankedResult), args.Error(1)
}

// ==========================
// Test Helpers
// ==========================

var fixedNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)

	activatedJob := &pb.ActivatedJob{
		Key:                      key,
		Type:                     TaskType,
		ProcessInstanceKey:       key * 10,
		BpmnProcessId:            "freelancer-ranking",
		ProcessDefinitionVersion: 1,
		ElementId:                "Activity_RankFreelancers",
		CustomHeaders:            "{}",
		Worker:                   "test-worker",
		Retries:                  3,
		Variables:                string(variablesJSON),
	}

	return entities.Job{ActivatedJob: activatedJob}
}

func newTestHandler(t *testing.T, service Service) *Handler {
	t.Helper()
	h, err := NewHandler(HandlerOptions{
		Service:      service,
		CustomConfig: &rankjob.Config{Enabled: true, MaxJobsActive: 1, Timeout: 5 * time.Second},
		Logger:       logger.NewTestLogger(t),
		Clock:        func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return h
}

func rankedResult(id string, score float64) models.RankedResult {
	return models.RankedResult{
		Candidate: models.Candidate{Freelancer: models.Freelancer{ID: id}},
		Score:     models.ScoreBreakdown{FreelancerID: id, FinalScore: score},
		RankScore: score,
	}
}

// ==========================
// Tests
// ==========================

func TestNewHandler(t *testing.T) {
	tests := []struct {
		name    string
		opts    HandlerOptions
		wantErr string
	}{
		{
			name: "defaults from app config",
			opts: HandlerOptions{AppConfig: &config.Config{}, Service: &MockService{}},
		},
		{
			name:    "invalid custom config",
			opts:    HandlerOptions{Service: &MockService{}, CustomConfig: &rankjob.Config{MaxJobsActive: 1}},
			wantErr: "timeout must be positive",
		},
		{
			name:    "missing service",
			opts:    HandlerOptions{AppConfig: &config.Config{}},
			wantErr: "ranking service is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := NewHandler(tt.opts)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				assert.Nil(t, h)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, TaskType, h.GetTaskType())
			assert.True(t, h.IsEnabled())
			assert.Equal(t, 30*time.Second, h.GetConfig().Timeout)
		})
	}
}

func TestParseInput(t *testing.T) {
	h := newTestHandler(t, &MockService{})

	input, err := h.parseInput(createMockJob(1, map[string]interface{}{
		"minRating":     4.5,
		"skills":        []string{"Go", "Postgres"},
		"availableOnly": true,
		"limit":         10,
		"requestedBy":   "ops",
	}))
	require.NoError(t, err)
	require.NotNil(t, input.MinRating)
	assert.Equal(t, 4.5, *input.MinRating)
	assert.Equal(t, []string{"Go", "Postgres"}, input.Skills)
	assert.True(t, input.AvailableOnly)
	assert.Equal(t, 10, input.Limit)

	empty, err := h.parseInput(createMockJob(2, map[string]interface{}{}))
	require.NoError(t, err)
	assert.Nil(t, empty.MinRating)
	assert.Zero(t, empty.Limit)

	for name, vars := range map[string]map[string]interface{}{
		"rating above five": {"minRating": 6},
		"skills not array":  {"skills": "go"},
		"zero limit":        {"limit": 0},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := h.parseInput(createMockJob(3, vars))
			stdErr, ok := errors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrCodeInvalidRankingInput, stdErr.Code)
		})
	}
}

func TestHandle_CompletesWithRanking(t *testing.T) {
	service := &MockService{}
	service.On("RankAll", mock.Anything, ranking.RankAllOptions{
		Skills: []string{"go"},
		Limit:  2,
	}).Return([]models.RankedResult{rankedResult("a", 91.5), rankedResult("b", 80)}, nil)

	h := newTestHandler(t, service)
	client := camundatest.NewJobClient()

	err := h.Handle(client, createMockJob(11, map[string]interface{}{"skills": []string{"go"}, "limit": 2}))
	require.NoError(t, err)
	service.AssertExpectations(t)

	vars, ok := client.CompletedVariables()
	require.True(t, ok)
	assert.Equal(t, 2.0, vars["count"])
	assert.Equal(t, "2024-06-01T10:00:00Z", vars["generatedAt"])
	assert.NotEmpty(t, vars["rankingId"])

	results := vars["results"].([]interface{})
	require.Len(t, results, 2)
	first := results[0].(map[string]interface{})
	assert.Equal(t, "a", first["freelancer"].(map[string]interface{})["id"])
	assert.Equal(t, 91.5, first["rankScore"])
	assert.Empty(t, client.Failed())
	assert.Empty(t, client.Thrown())
}

func TestHandle_EmptyRankingCompletes(t *testing.T) {
	service := &MockService{}
	service.On("RankAll", mock.Anything, mock.Anything).Return([]models.RankedResult{}, nil)

	client := camundatest.NewJobClient()
	require.NoError(t, newTestHandler(t, service).Handle(client, createMockJob(12, nil)))

	vars, ok := client.CompletedVariables()
	require.True(t, ok)
	assert.Equal(t, 0.0, vars["count"])
	assert.Equal(t, []interface{}{}, vars["results"])
}

func TestHandle_InvalidInputThrowsBPMNError(t *testing.T) {
	service := &MockService{}
	client := camundatest.NewJobClient()

	err := newTestHandler(t, service).Handle(client, createMockJob(13, map[string]interface{}{"limit": "ten"}))
	require.Error(t, err)
	service.AssertNotCalled(t, "RankAll", mock.Anything, mock.Anything)

	thrown := client.Thrown()
	require.Len(t, thrown, 1)
	assert.Equal(t, "INVALID_RANKING_INPUT", thrown[0].ErrorCode)
	assert.Empty(t, client.Completed())
}

func TestHandle_FetchFailureFailsWithRetries(t *testing.T) {
	service := &MockService{}
	fetchErr := errors.NewFreelancerQueryFailedError("fetch freelancers", stderrors.New("connection reset"))
	service.On("RankAll", mock.Anything, mock.Anything).Return(nil, fetchErr)

	client := camundatest.NewJobClient()
	err := newTestHandler(t, service).Handle(client, createMockJob(14, nil))
	assert.ErrorIs(t, err, fetchErr)

	failed := client.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, int64(14), failed[0].JobKey)
	assert.Equal(t, int32(2), failed[0].Retries)
}

func TestExecute_WrapsUnexpectedErrors(t *testing.T) {
	service := &MockService{}
	service.On("RankAll", mock.Anything, mock.Anything).Return(nil, stderrors.New("nil pointer"))

	_, err := newTestHandler(t, service).Execute(context.Background(), &Input{})
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeRankingFailed, stdErr.Code)
}

func TestGetInputSchema(t *testing.T) {
	schema := GetInputSchema()
	assert.Equal(t, "object", schema.Type)
	assert.Empty(t, schema.Required)
	assert.True(t, schema.AdditionalProperties)
	assert.Contains(t, schema.Properties, "availableOnly")
}
