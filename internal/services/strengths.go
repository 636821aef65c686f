package services

import (
	"sort"
	"strings"

	"noelserdna/cyber-cv-analyzer/internal/models"
)

const (
	strengthThreshold  = 7.0
	strengthCount      = 5
	descriptionMaxLen  = 100
	defaultStrengthVal = models.MarketValueMedium
)

// SelectStrengths turns the agent's proposed strengths into the exactly-five
// set the report carries. Proposals below 7.0 are discarded; surplus is cut by
// score; deficit is backfilled from the parameter scores, first the ones at or
// above the bar, then the best of the rest flagged as low market value.
func SelectStrengths(proposed []models.Strength, scores *models.DetailedScores) []models.Strength {
	valid := make([]models.Strength, 0, len(proposed))
	for _, s := range proposed {
		if s.Area == "" {
			s.Area = "Unknown"
		}
		if !models.IsValidMarketValue(string(s.MarketValue)) {
			s.MarketValue = defaultStrengthVal
		}
		if s.Score >= strengthThreshold {
			valid = append(valid, s)
		}
	}

	if len(valid) == strengthCount {
		return valid
	}

	if len(valid) > strengthCount {
		sort.SliceStable(valid, func(i, j int) bool {
			return valid[i].Score > valid[j].Score
		})
		return valid[:strengthCount]
	}

	seen := make(map[string]bool, strengthCount)
	for _, s := range valid {
		seen[strings.ToLower(s.Area)] = true
	}

	ranked := scores.Ordered()
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Param.Score > ranked[j].Param.Score
	})

	for _, ref := range ranked {
		if len(valid) >= strengthCount {
			break
		}
		if ref.Param.Score < strengthThreshold {
			continue
		}
		area := areaFromParameter(ref.Name)
		if seen[strings.ToLower(area)] {
			continue
		}
		seen[strings.ToLower(area)] = true
		valid = append(valid, models.Strength{
			Area:        area,
			Description: truncateDescription(ref.Param.Justification, descriptionMaxLen),
			Score:       ref.Param.Score,
			MarketValue: models.MarketValueMedium,
		})
	}

	// Still short: take the best remaining parameters even below the bar so
	// the report always carries five entries.
	for _, ref := range ranked {
		if len(valid) >= strengthCount {
			break
		}
		area := areaFromParameter(ref.Name)
		if seen[strings.ToLower(area)] {
			continue
		}
		seen[strings.ToLower(area)] = true
		valid = append(valid, models.Strength{
			Area:        area,
			Description: truncateDescription(ref.Param.Justification, descriptionMaxLen),
			Score:       ref.Param.Score,
			MarketValue: models.MarketValueLow,
		})
	}

	return valid
}

// areaFromParameter renders a parameter key as a display area name,
// e.g. "cloud_security" -> "Cloud Security".
func areaFromParameter(name string) string {
	words := strings.Split(strings.ReplaceAll(name, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func truncateDescription(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
