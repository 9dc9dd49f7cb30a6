package findsimilar

import (
	"context"

	"freelancer-ranking/internal/common/validation"
	"freelancer-ranking/internal/models"
	"freelancer-ranking/internal/ranking"
)

type Input struct {
	FreelancerID string `json:"freelancerId"`
	Limit        int    `json:"limit,omitempty"`
}

type Service interface {
	FindSimilar(ctx context.Context, freelancerID string, opts ranking.SimilarOptions) ([]models.RankedResult, error)
}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"freelancerId": {
				Type:        "string",
				Description: "Reference freelancer",
				MinLength:   validation.Int(1),
				MaxLength:   validation.Int(255),
			},
			"limit": {
				Type:    "integer",
				Minimum: validation.Float(1),
				Maximum: validation.Float(100),
			},
		},
		Required:             []string{"freelancerId"},
		AdditionalProperties: true,
	}
}
