package rankfreelancers

import (
	"context"

	"freelancer-ranking/internal/common/validation"
	"freelancer-ranking/internal/models"
	"freelancer-ranking/internal/ranking"
)

type Input struct {
	MinRating     *float64 `json:"minRating,omitempty"`
	Skills        []string `json:"skills,omitempty"`
	AvailableOnly bool     `json:"availableOnly,omitempty"`
	Limit         int      `json:"limit,omitempty"`
}

// Service is the slice of the ranking engine this worker calls.
type Service interface {
	RankAll(ctx context.Context, opts ranking.RankAllOptions) ([]models.RankedResult, error)
}

// GetInputSchema returns the JSON schema for job variables. Other process
// variables are allowed and ignored.
func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"minRating": {
				Type:        "number",
				Description: "Minimum average rating",
				Minimum:     validation.Float(0),
				Maximum:     validation.Float(5),
			},
			"skills": {
				Type:        "array",
				Description: "Keep freelancers with at least one of these skills",
				MaxItems:    validation.Int(50),
				Items:       &validation.Property{Type: "string", MaxLength: validation.Int(100)},
			},
			"availableOnly": {
				Type:        "boolean",
				Description: "Only freelancers whose status is available",
			},
			"limit": {
				Type:        "integer",
				Description: "Maximum number of results; all when omitted",
				Minimum:     validation.Float(1),
				Maximum:     validation.Float(1000),
			},
		},
		AdditionalProperties: true,
	}
}
