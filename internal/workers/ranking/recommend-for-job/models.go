package recommendforjob

import (
	"context"

	"freelancer-ranking/internal/common/validation"
	"freelancer-ranking/internal/models"
	"freelancer-ranking/internal/ranking"
)

type Input struct {
	JobID     string   `json:"jobId"`
	MinRating *float64 `json:"minRating,omitempty"`
	Limit     int      `json:"limit,omitempty"`
}

type Service interface {
	RecommendForJob(ctx context.Context, jobID string, opts ranking.RecommendOptions) ([]models.RankedResult, error)
}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"jobId": {
				Type:        "string",
				Description: "Job to recommend freelancers for",
				MinLength:   validation.Int(1),
				MaxLength:   validation.Int(255),
			},
			"minRating": {
				Type:    "number",
				Minimum: validation.Float(0),
				Maximum: validation.Float(5),
			},
			"limit": {
				Type:        "integer",
				Description: "Maximum number of recommendations; the configured default when omitted",
				Minimum:     validation.Float(1),
				Maximum:     validation.Float(1000),
			},
		},
		Required:             []string{"jobId"},
		AdditionalProperties: true,
	}
}
