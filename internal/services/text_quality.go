package services

import (
	"math"
	"strings"
	"unicode"
)

// cvKeywords are common résumé terms; their presence raises extraction
// confidence.
var cvKeywords = []string{
	"experience",
	"education",
	"skills",
	"professional",
	"certification",
	"security",
	"developer",
	"engineer",
	"analyst",
	"manager",
	"project",
	"technical",
	"years",
	"university",
	"degree",
}

var spanishKeywords = []string{
	"experiencia",
	"profesional",
	"educación",
	"habilidades",
	"certificación",
	"certificaciones",
	"años",
	"universidad",
	"licenciatura",
	"maestría",
	"español",
	"conocimientos",
	"proyectos",
	"técnico",
	"desarrollador",
	"ingeniero",
	"analista",
	"gerente",
	"trabajé",
	"trabajó",
}

var englishKeywords = []string{
	"experience",
	"professional",
	"education",
	"skills",
	"certification",
	"certifications",
	"years",
	"university",
	"bachelor",
	"master",
	"english",
	"knowledge",
	"projects",
	"technical",
	"developer",
	"engineer",
	"analyst",
	"manager",
	"worked",
	"developed",
}

// CalculateParsingConfidence estimates how trustworthy the extracted text is,
// from 0.0 (garbage or empty) to 1.0. Weighted factors: length, character
// diversity, alphanumeric ratio, CV keyword hits. Informational only; never
// used to reject a request.
func CalculateParsingConfidence(text string, pageCount int) float64 {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0.0
	}

	textLength := len(trimmed)
	lengthScore := math.Min(float64(textLength)/2000.0, 1.0)

	uniqueChars := make(map[rune]struct{})
	alphanumeric := 0
	totalChars := 0
	for _, r := range text {
		uniqueChars[r] = struct{}{}
		totalChars++
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			alphanumeric++
		}
	}

	diversityScore := math.Min(float64(len(uniqueChars))/100.0, 1.0)

	alphanumericRatio := 0.0
	if totalChars > 0 {
		alphanumericRatio = float64(alphanumeric) / float64(totalChars)
	}
	alphanumericScore := math.Min(alphanumericRatio*2.0, 1.0)

	textLower := strings.ToLower(text)
	keywordMatches := 0
	for _, keyword := range cvKeywords {
		if strings.Contains(textLower, keyword) {
			keywordMatches++
		}
	}
	keywordScore := math.Min(float64(keywordMatches)/5.0, 1.0)

	confidence := lengthScore*0.25 + diversityScore*0.20 + alphanumericScore*0.30 + keywordScore*0.25

	// Very short texts usually mean a failed extraction.
	if textLength < 500 {
		confidence *= float64(textLength) / 500.0
	}

	// Multi-page documents with too few characters per page are suspect.
	if pageCount > 1 {
		charsPerPage := float64(textLength) / float64(pageCount)
		if charsPerPage < 800 {
			confidence *= 0.8
		}
	}

	confidence = math.Max(0.0, math.Min(1.0, confidence))
	return math.Round(confidence*100) / 100
}

// DetectLanguage classifies the CV text as Spanish or English by counting
// keyword hits. Spanish wins only on a strict majority; ties and empty text
// default to English.
func DetectLanguage(text string) string {
	if strings.TrimSpace(text) == "" {
		return "en"
	}

	textLower := strings.ToLower(text)

	spanishMatches := 0
	for _, keyword := range spanishKeywords {
		if strings.Contains(textLower, keyword) {
			spanishMatches++
		}
	}

	englishMatches := 0
	for _, keyword := range englishKeywords {
		if strings.Contains(textLower, keyword) {
			englishMatches++
		}
	}

	if spanishMatches > englishMatches {
		return "es"
	}
	return "en"
}
