// internal/models/ranking.go
package models

// ScoreBreakdown is the per-candidate scoring result. Sub-scores are in
// [0,100]; FinalScore is BaseScore scaled by ActivityMultiplier.
type ScoreBreakdown struct {
	FreelancerID       string  `json:"freelancerId"`
	ProfileQuality     float64 `json:"profileQuality"`
	Performance        float64 `json:"performance"`
	Experience         float64 `json:"experience"`
	Reputation         float64 `json:"reputation"`
	JobMatch           float64 `json:"jobMatch"`
	Recency            float64 `json:"recency"`
	BaseScore          float64 `json:"baseScore"`
	ActivityMultiplier float64 `json:"activityMultiplier"`
	FinalScore         float64 `json:"finalScore"`
}

// RankedResult is one entry of a ranked list. RankScore is the value the
// list is ordered by: FinalScore, or the similarity-weighted score for
// similar-freelancer lookups.
type RankedResult struct {
	Candidate
	Score           ScoreBreakdown `json:"score"`
	SimilarityScore *float64       `json:"similarityScore,omitempty"`
	RankScore       float64        `json:"rankScore"`
}
