package rankjob

import "freelancer-ranking/internal/common/validation"

// GetOutputSchema describes the variables every ranking worker completes with.
func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"rankingId": {
				Type:        "string",
				Description: "Identifier of this ranking run",
				MinLength:   validation.Int(1),
			},
			"results": {
				Type:        "array",
				Description: "Ranked freelancers, best first",
				Items:       &validation.Property{Type: "object"},
			},
			"count": {
				Type:        "integer",
				Description: "Number of results",
				Minimum:     validation.Float(0),
			},
			"generatedAt": {
				Type:        "string",
				Description: "RFC 3339 timestamp of the run",
			},
		},
		Required:             []string{"rankingId", "results", "count", "generatedAt"},
		AdditionalProperties: false,
	}
}
