package main

import (
	"encoding/json"
	"fmt"

	"freelancer-ranking/internal/common/errors"
	"freelancer-ranking/internal/common/validation"
	"freelancer-ranking/internal/workers/ranking/rankjob"
	"freelancer-ranking/pkg/registry"

	fs "freelancer-ranking/internal/workers/ranking/find-similar"
	rf "freelancer-ranking/internal/workers/ranking/rank-freelancers"
	rj "freelancer-ranking/internal/workers/ranking/recommend-for-job"
	sf "freelancer-ranking/internal/workers/ranking/search-freelancers"
)

const activityVersion = "1.0.0"

// storeErrorCodes can be raised by whichever candidate source is configured.
var storeErrorCodes = []errors.ErrorCode{
	errors.ErrCodeDatabaseConnectionFailed,
	errors.ErrCodeFreelancerQueryFailed,
	errors.ErrCodeQueryTimeout,
	errors.ErrCodeElasticsearchConnectionFailed,
	errors.ErrCodeSearchQueryFailed,
	errors.ErrCodeSearchTimeout,
	errors.ErrCodeIndexNotFound,
}

type activityDef struct {
	taskType    string
	displayName string
	description string
	schema      validation.JSONSchema
	timeout     string
	tags        []string
}

func rankingActivities() []activityDef {
	return []activityDef{
		{
			taskType:    rf.TaskType,
			displayName: "Rank Freelancers",
			description: "Scores every freelancer in the pool and returns them best first",
			schema:      rf.GetInputSchema(),
			timeout:     "30s",
			tags:        []string{"ranking"},
		},
		{
			taskType:    rj.TaskType,
			displayName: "Recommend Freelancers For Job",
			description: "Ranks freelancers against one job's skills, budget and category",
			schema:      rj.GetInputSchema(),
			timeout:     "15s",
			tags:        []string{"ranking", "matching"},
		},
		{
			taskType:    fs.TaskType,
			displayName: "Find Similar Freelancers",
			description: "Finds freelancers similar to a reference freelancer",
			schema:      fs.GetInputSchema(),
			timeout:     "15s",
			tags:        []string{"ranking", "similarity"},
		},
		{
			taskType:    sf.TaskType,
			displayName: "Search Freelancers",
			description: "Filters the pool by query, skills, category, rating and rate, then ranks",
			schema:      sf.GetInputSchema(),
			timeout:     "15s",
			tags:        []string{"ranking", "search"},
		},
	}
}

// buildActivities describes every ranking worker from its own schemas.
func buildActivities(status string) ([]registry.Activity, error) {
	output, err := schemaMap(rankjob.GetOutputSchema())
	if err != nil {
		return nil, err
	}

	codes := []string{
		string(errors.ErrCodeInvalidRankingInput),
		string(errors.ErrCodeRankingFailed),
		string(errors.ErrCodeRankingTimeout),
	}
	for _, code := range storeErrorCodes {
		codes = append(codes, string(code))
	}

	var activities []registry.Activity
	for _, def := range rankingActivities() {
		input, err := schemaMap(def.schema)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", def.taskType, err)
		}
		activities = append(activities, registry.Activity{
			ID:                   def.taskType,
			DisplayName:          def.displayName,
			Description:          def.description,
			Category:             "ranking",
			Version:              activityVersion,
			TaskType:             def.taskType,
			ImplementationStatus: status,
			InputSchema:          input,
			OutputSchema:         output,
			ErrorCodes:           codes,
			Timeout:              def.timeout,
			Retries:              errors.GetRetryCount(errors.ErrCodeRankingFailed),
			Tags:                 def.tags,
		})
	}
	return activities, nil
}

func schemaMap(schema validation.JSONSchema) (map[string]interface{}, error) {
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode schema: %w", err)
	}
	return out, nil
}
