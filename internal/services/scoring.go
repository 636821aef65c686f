package services

import (
	"math"

	"noelserdna/cyber-cv-analyzer/internal/models"
)

// RawParameter is the per-parameter shape the agent produces. Weight is
// intentionally absent: agents do not get to pick weights.
type RawParameter struct {
	Score         float64  `json:"score"`
	Justification string   `json:"justification"`
	Evidence      []string `json:"evidence"`
}

const (
	defaultJustification = "No data provided"
)

// parameterWeights is the constant evaluation rubric. Same release, same
// weights; changing an entry is a scoring-model version bump.
var parameterWeights = map[string]float64{
	"certifications":    1.2,
	"offensive_skills":  1.1,
	"defensive_skills":  1.1,
	"governance":        1.0,
	"cloud_security":    1.1,
	"tools":             1.0,
	"programming":       1.0,
	"architecture":      1.0,
	"education":         0.9,
	"soft_skills":       1.0,
	"languages":         0.8,
	"devsecops":         1.0,
	"forensics":         1.0,
	"cryptography":      1.0,
	"ot_ics":            1.0,
	"mobile_iot":        1.0,
	"threat_intel":      1.0,
	"contributions":     0.9,
	"publications":      0.9,
	"management":        1.0,
	"crisis":            1.1,
	"transformation":    1.0,
	"niche_specialties": 1.0,
	"experience":        1.2,
}

// ParameterWeight returns the rubric weight for a parameter name, or 1.0 for
// names outside the rubric.
func ParameterWeight(name string) float64 {
	if w, ok := parameterWeights[name]; ok {
		return w
	}
	return 1.0
}

// BuildDetailedScores materializes the full 24-parameter score set from
// whatever subset the agent returned. Missing parameters (and missing fields
// inside present ones) get neutral defaults; extra keys are dropped; weights
// always come from the rubric table.
func BuildDetailedScores(raw map[string]RawParameter) *models.DetailedScores {
	scores := &models.DetailedScores{}
	for _, ref := range scores.Ordered() {
		param := ref.Param
		param.Weight = parameterWeights[ref.Name]
		param.Justification = defaultJustification
		param.Evidence = []string{}

		rawParam, ok := raw[ref.Name]
		if !ok {
			continue
		}
		param.Score = rawParam.Score
		if rawParam.Justification != "" {
			param.Justification = rawParam.Justification
		}
		if rawParam.Evidence != nil {
			param.Evidence = rawParam.Evidence
		}
	}
	return scores
}

// WeightedTotalScore aggregates the 24 parameters into a 0-10 score:
// sum(score*weight) / sum(weight), rounded to 2 decimals.
func WeightedTotalScore(scores *models.DetailedScores) float64 {
	var weightedSum, weightTotal float64
	for _, ref := range scores.Ordered() {
		weightedSum += ref.Param.Score * ref.Param.Weight
		weightTotal += ref.Param.Weight
	}
	if weightTotal == 0 {
		return 0.0
	}
	return math.Round(weightedSum/weightTotal*100) / 100
}

// Percentile maps the total score onto 0-100. Linear scaling for now; a
// population-based percentile needs a corpus of stored analyses first.
func Percentile(totalScore float64) int {
	p := int(math.Round(totalScore * 10))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
