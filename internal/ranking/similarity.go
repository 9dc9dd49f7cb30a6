package ranking

import (
	"math"
	"strings"

	"freelancer-ranking/internal/models"
)

// Similarity weights and the blend with the quality score used to order
// similar-freelancer results.
const (
	similaritySkillWt = 0.5
	similarityRateWt  = 0.3
	similarityTitleWt = 0.2

	similarityBlendWt = 0.6
	qualityBlendWt    = 0.4

	neutralRateSimilarity = 50.0
	sameTitleScore        = 100.0
	differentTitleScore   = 50.0
	unknownTitleScore     = 25.0
)

// Similarity scores how closely candidate resembles reference, 0-100.
func Similarity(reference, candidate models.Freelancer) float64 {
	return similaritySkillWt*SkillSimilarity(reference.Skills, candidate.Skills) +
		similarityRateWt*RateSimilarity(reference.HourlyRate, candidate.HourlyRate) +
		similarityTitleWt*TitleSimilarity(reference.Title, candidate.Title)
}

// SkillSimilarity is the percentage of reference skills found in the
// candidate's skills. A reference without skills resembles no one.
func SkillSimilarity(reference, candidate []string) float64 {
	if len(reference) == 0 {
		return 0
	}
	matched := 0
	for _, skill := range reference {
		if anySkillOverlaps(candidate, skill) {
			matched++
		}
	}
	return float64(matched) / float64(len(reference)) * 100
}

// RateSimilarity falls linearly with the relative rate difference. An
// unknown or zero reference rate is neutral; an unknown candidate rate
// counts as zero.
func RateSimilarity(reference, candidate *float64) float64 {
	ref := floatOr(reference, 0)
	if ref == 0 {
		return neutralRateSimilarity
	}
	diff := math.Abs(ref-floatOr(candidate, 0)) / ref * 100
	return math.Max(0, 100-diff)
}

// TitleSimilarity compares titles case-insensitively.
func TitleSimilarity(reference, candidate *string) float64 {
	if !present(reference) || !present(candidate) {
		return unknownTitleScore
	}
	if strings.EqualFold(strings.TrimSpace(*reference), strings.TrimSpace(*candidate)) {
		return sameTitleScore
	}
	return differentTitleScore
}

// blendSimilarity is the ordering score for similar-freelancer results.
func blendSimilarity(similarity, finalScore float64) float64 {
	return similarityBlendWt*similarity + qualityBlendWt*finalScore
}
