package models

import "time"

// AnalysisVersion is stamped into every result's metadata.
const AnalysisVersion = "1.0.0"

type SeniorityLevel string

const (
	SeniorityJunior    SeniorityLevel = "Junior"
	SeniorityMid       SeniorityLevel = "Mid"
	SenioritySenior    SeniorityLevel = "Senior"
	SeniorityLead      SeniorityLevel = "Lead"
	SeniorityExecutive SeniorityLevel = "Executive"
)

func IsValidSeniority(s string) bool {
	switch SeniorityLevel(s) {
	case SeniorityJunior, SeniorityMid, SenioritySenior, SeniorityLead, SeniorityExecutive:
		return true
	}
	return false
}

type MarketValue string

const (
	MarketValueHigh   MarketValue = "high"
	MarketValueMedium MarketValue = "medium"
	MarketValueLow    MarketValue = "low"
)

func IsValidMarketValue(v string) bool {
	switch MarketValue(v) {
	case MarketValueHigh, MarketValueMedium, MarketValueLow:
		return true
	}
	return false
}

// ScoreParameter is one scored cybersecurity evaluation dimension.
// Weight always comes from the fixed scoring table, never from agent output.
type ScoreParameter struct {
	Score         float64  `json:"score"`
	Justification string   `json:"justification"`
	Evidence      []string `json:"evidence"`
	Weight        float64  `json:"weight"`
}

// DetailedScores holds all 24 evaluation parameters. The struct shape
// guarantees exactly 24 entries with no duplicates or omissions.
type DetailedScores struct {
	Certifications   ScoreParameter `json:"certifications"`
	OffensiveSkills  ScoreParameter `json:"offensive_skills"`
	DefensiveSkills  ScoreParameter `json:"defensive_skills"`
	Governance       ScoreParameter `json:"governance"`
	CloudSecurity    ScoreParameter `json:"cloud_security"`
	Tools            ScoreParameter `json:"tools"`
	Programming      ScoreParameter `json:"programming"`
	Architecture     ScoreParameter `json:"architecture"`
	Education        ScoreParameter `json:"education"`
	SoftSkills       ScoreParameter `json:"soft_skills"`
	Languages        ScoreParameter `json:"languages"`
	DevSecOps        ScoreParameter `json:"devsecops"`
	Forensics        ScoreParameter `json:"forensics"`
	Cryptography     ScoreParameter `json:"cryptography"`
	OTICS            ScoreParameter `json:"ot_ics"`
	MobileIoT        ScoreParameter `json:"mobile_iot"`
	ThreatIntel      ScoreParameter `json:"threat_intel"`
	Contributions    ScoreParameter `json:"contributions"`
	Publications     ScoreParameter `json:"publications"`
	Management       ScoreParameter `json:"management"`
	Crisis           ScoreParameter `json:"crisis"`
	Transformation   ScoreParameter `json:"transformation"`
	NicheSpecialties ScoreParameter `json:"niche_specialties"`
	Experience       ScoreParameter `json:"experience"`
}

// ParameterRef pairs a parameter's wire name with a pointer into the struct,
// so scoring code can walk the set in canonical order.
type ParameterRef struct {
	Name  string
	Param *ScoreParameter
}

// Ordered returns references to all 24 parameters in canonical order.
func (d *DetailedScores) Ordered() []ParameterRef {
	return []ParameterRef{
		{"certifications", &d.Certifications},
		{"offensive_skills", &d.OffensiveSkills},
		{"defensive_skills", &d.DefensiveSkills},
		{"governance", &d.Governance},
		{"cloud_security", &d.CloudSecurity},
		{"tools", &d.Tools},
		{"programming", &d.Programming},
		{"architecture", &d.Architecture},
		{"education", &d.Education},
		{"soft_skills", &d.SoftSkills},
		{"languages", &d.Languages},
		{"devsecops", &d.DevSecOps},
		{"forensics", &d.Forensics},
		{"cryptography", &d.Cryptography},
		{"ot_ics", &d.OTICS},
		{"mobile_iot", &d.MobileIoT},
		{"threat_intel", &d.ThreatIntel},
		{"contributions", &d.Contributions},
		{"publications", &d.Publications},
		{"management", &d.Management},
		{"crisis", &d.Crisis},
		{"transformation", &d.Transformation},
		{"niche_specialties", &d.NicheSpecialties},
		{"experience", &d.Experience},
	}
}

type YearsExperience struct {
	TotalIT       float64 `json:"total_it"`
	Cybersecurity float64 `json:"cybersecurity"`
	CurrentRole   float64 `json:"current_role"`
}

// CandidateSummary carries the headline evaluation. TotalScore and Percentile
// are derived from the detailed scores, overwriting anything agent-supplied.
type CandidateSummary struct {
	Name            string          `json:"name"`
	TotalScore      float64         `json:"total_score"`
	Percentile      int             `json:"percentile"`
	DetectedRole    string          `json:"detected_role"`
	SeniorityLevel  SeniorityLevel  `json:"seniority_level"`
	YearsExperience YearsExperience `json:"years_experience"`
}

type Strength struct {
	Area        string      `json:"area"`
	Description string      `json:"description"`
	Score       float64     `json:"score"`
	MarketValue MarketValue `json:"market_value"`
}

type ImprovementArea struct {
	Area            string   `json:"area"`
	CurrentScore    float64  `json:"current_score"`
	GapDescription  string   `json:"gap_description"`
	Recommendations []string `json:"recommendations"`
	Priority        string   `json:"priority"`
}

type RedFlag struct {
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
}

type Recommendations struct {
	Certifications      []string `json:"certifications"`
	Training            []string `json:"training"`
	ExperienceAreas     []string `json:"experience_areas"`
	NextRoleSuggestions []string `json:"next_role_suggestions"`
}

type InterviewSuggestions struct {
	TechnicalQuestions    []string `json:"technical_questions"`
	ScenarioQuestions     []string `json:"scenario_questions"`
	VerificationQuestions []string `json:"verification_questions"`
}

type AnalysisMetadata struct {
	Timestamp            time.Time `json:"timestamp"`
	ParsingConfidence    float64   `json:"parsing_confidence"`
	CVLanguage           string    `json:"cv_language"`
	AnalysisVersion      string    `json:"analysis_version"`
	ProcessingDurationMS int       `json:"processing_duration_ms"`
}

// CVAnalysisResult is the root aggregate returned to the caller. It is
// assembled once per request and immutable afterwards.
type CVAnalysisResult struct {
	AnalysisMetadata     AnalysisMetadata     `json:"analysis_metadata"`
	CandidateSummary     CandidateSummary     `json:"candidate_summary"`
	DetailedScores       DetailedScores       `json:"detailed_scores"`
	Strengths            []Strength           `json:"strengths"`
	ImprovementAreas     []ImprovementArea    `json:"improvement_areas"`
	RedFlags             []RedFlag            `json:"red_flags"`
	Recommendations      Recommendations      `json:"recommendations"`
	InterviewSuggestions InterviewSuggestions `json:"interview_suggestions"`
}
