package searchfreelancers

import (
	"context"

	"freelancer-ranking/internal/common/validation"
	"freelancer-ranking/internal/models"
	"freelancer-ranking/internal/ranking"
)

type Input struct {
	Query     string   `json:"query,omitempty"`
	Skills    []string `json:"skills,omitempty"`
	Category  string   `json:"category,omitempty"`
	MinRating *float64 `json:"minRating,omitempty"`
	MinRate   *float64 `json:"minRate,omitempty"`
	MaxRate   *float64 `json:"maxRate,omitempty"`
	Limit     int      `json:"limit,omitempty"`
}

type Service interface {
	SearchAndRank(ctx context.Context, opts ranking.SearchOptions) ([]models.RankedResult, error)
}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"query": {
				Type:        "string",
				Description: "Free text matched against name, title, bio and skills",
				MaxLength:   validation.Int(200),
			},
			"skills": {
				Type:     "array",
				MaxItems: validation.Int(50),
				Items:    &validation.Property{Type: "string", MaxLength: validation.Int(100)},
			},
			"category": {
				Type:        "string",
				Description: "Category keyword; \"All Categories\" disables the filter",
				MaxLength:   validation.Int(100),
			},
			"minRating": {
				Type:    "number",
				Minimum: validation.Float(0),
				Maximum: validation.Float(5),
			},
			"minRate": {
				Type:    "number",
				Minimum: validation.Float(0),
			},
			"maxRate": {
				Type:    "number",
				Minimum: validation.Float(0),
			},
			"limit": {
				Type:    "integer",
				Minimum: validation.Float(1),
				Maximum: validation.Float(1000),
			},
		},
		AdditionalProperties: true,
	}
}
