package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"noelserdna/cyber-cv-analyzer/internal/models"
)

// AnalysisRequest describes one uploaded CV to analyze. Language is the
// requested report language ("es" or "en"); the detected CV language lands in
// the result metadata independently.
type AnalysisRequest struct {
	FilePath   string
	Filename   string
	RoleTarget string
	Language   string
}

type AnalyzerService interface {
	AnalyzeCV(ctx context.Context, req AnalysisRequest) (*models.CVAnalysisResult, error)
}

type analyzerService struct {
	pdfParser     PDFParserService
	agent         AgentClient
	retrier       *Retrier
	promptBuilder *PromptBuilder
	timeout       time.Duration
}

// NewAnalyzerService wires the full pipeline behind one hard deadline. The
// agent transport is interchangeable; retry policy applies to it uniformly.
func NewAnalyzerService(pdfParser PDFParserService, agent AgentClient, retrier *Retrier, timeout time.Duration) AnalyzerService {
	return &analyzerService{
		pdfParser:     pdfParser,
		agent:         agent,
		retrier:       retrier,
		promptBuilder: NewPromptBuilder(),
		timeout:       timeout,
	}
}

// rawAnalysis is the schema the agent must return. It is parsed exactly once;
// assemble applies every default and consistency rule in one place, so
// downstream code never sees partially-filled data.
type rawAnalysis struct {
	Candidate struct {
		Name            string                 `json:"name"`
		DetectedRole    string                 `json:"detected_role"`
		SeniorityLevel  string                 `json:"seniority_level"`
		YearsExperience models.YearsExperience `json:"years_experience"`
	} `json:"candidate"`
	Parameters         map[string]RawParameter  `json:"parameters"`
	Strengths          []models.Strength        `json:"strengths"`
	ImprovementAreas   []models.ImprovementArea `json:"improvement_areas"`
	RedFlags           []models.RedFlag         `json:"red_flags"`
	Recommendations    models.Recommendations   `json:"recommendations"`
	InterviewQuestions struct {
		Technical    []string `json:"technical"`
		Scenario     []string `json:"scenario"`
		Verification []string `json:"verification"`
	} `json:"interview_questions"`
}

// AnalyzeCV implements AnalyzerService: extract, score text quality, call the
// agent with retries, normalize, assemble. The configured timeout covers the
// whole sequence; hitting it surfaces as a context deadline error, which
// callers must keep distinct from retry exhaustion.
func (a *analyzerService) AnalyzeCV(ctx context.Context, req AnalysisRequest) (*models.CVAnalysisResult, error) {
	started := time.Now()

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	log.Printf("📄 Extracting text from %s", req.Filename)
	content, err := a.pdfParser.ExtractTextWithMetaData(req.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to extract CV text: %w", err)
	}

	confidence := CalculateParsingConfidence(content.Text, content.PageCount)
	detectedLanguage := DetectLanguage(content.Text)
	log.Printf("🔍 Extracted %d page(s), %d chars, confidence %.2f, language %s",
		content.PageCount, len(content.Text), confidence, detectedLanguage)

	language := req.Language
	if language == "" {
		language = "es"
	}

	prompt := a.promptBuilder.BuildAnalysisPrompt(content.Text, req.RoleTarget, language)
	log.Printf("🤖 Calling analysis agent (prompt %d chars)", len(prompt))

	response, err := a.retrier.Do(ctx, func(ctx context.Context) (string, error) {
		return a.agent.Analyze(ctx, prompt)
	})
	if err != nil {
		return nil, err
	}

	raw, err := parseAgentResponse(response)
	if err != nil {
		log.Printf("❌ Unparseable agent response: %v (payload: %s)", err, truncateForLog(response, 200))
		return nil, err
	}

	result, err := a.assemble(raw, confidence, detectedLanguage, time.Since(started))
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Analysis complete: role %q, score %.2f, %d ms",
		result.CandidateSummary.DetectedRole, result.CandidateSummary.TotalScore,
		result.AnalysisMetadata.ProcessingDurationMS)
	return result, nil
}

// parseAgentResponse strips an optional markdown fence and parses the JSON.
// Anything unparseable is a response-shape defect, never retried.
func parseAgentResponse(response string) (*rawAnalysis, error) {
	var raw rawAnalysis
	if err := json.Unmarshal([]byte(stripFence(response)), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &raw, nil
}

// stripFence removes a single leading ```json (or bare ```) marker and a
// single trailing ``` when present.
func stripFence(response string) string {
	s := strings.TrimSpace(response)
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
	}
	if strings.HasSuffix(s, "```") {
		s = s[:len(s)-len("```")]
	}
	return strings.TrimSpace(s)
}

func (a *analyzerService) assemble(raw *rawAnalysis, confidence float64, detectedLanguage string, duration time.Duration) (*models.CVAnalysisResult, error) {
	scores := BuildDetailedScores(raw.Parameters)
	total := WeightedTotalScore(scores)

	name := raw.Candidate.Name
	if name == "" {
		name = "Unknown"
	}
	role := raw.Candidate.DetectedRole
	if role == "" {
		role = "Unknown"
	}
	seniority := raw.Candidate.SeniorityLevel
	if seniority == "" {
		seniority = string(models.SeniorityMid)
	}
	if !models.IsValidSeniority(seniority) {
		return nil, fmt.Errorf("%w: unknown seniority level %q", ErrMalformedResponse, seniority)
	}

	years := raw.Candidate.YearsExperience
	if years.TotalIT < 0 {
		years.TotalIT = 0
	}
	if years.Cybersecurity < 0 {
		years.Cybersecurity = 0
	}
	if years.CurrentRole < 0 {
		years.CurrentRole = 0
	}

	improvements := make([]models.ImprovementArea, 0, len(raw.ImprovementAreas))
	for _, area := range raw.ImprovementAreas {
		if area.Recommendations == nil {
			area.Recommendations = []string{}
		}
		switch area.Priority {
		case "high", "medium", "low":
		default:
			area.Priority = "medium"
		}
		improvements = append(improvements, area)
	}

	flags := make([]models.RedFlag, 0, len(raw.RedFlags))
	for _, flag := range raw.RedFlags {
		if flag.Type == "" {
			flag.Type = "skill_inconsistency"
		}
		switch flag.Severity {
		case "low", "medium", "high":
		default:
			flag.Severity = "medium"
		}
		flags = append(flags, flag)
	}

	recs := raw.Recommendations
	recs.Certifications = nonNil(recs.Certifications)
	recs.Training = nonNil(recs.Training)
	recs.ExperienceAreas = nonNil(recs.ExperienceAreas)
	recs.NextRoleSuggestions = nonNil(recs.NextRoleSuggestions)

	interview := models.InterviewSuggestions{
		TechnicalQuestions:    nonNil(raw.InterviewQuestions.Technical),
		ScenarioQuestions:     nonNil(raw.InterviewQuestions.Scenario),
		VerificationQuestions: nonNil(raw.InterviewQuestions.Verification),
	}
	if len(interview.TechnicalQuestions) < 3 || len(interview.ScenarioQuestions) < 2 {
		return nil, fmt.Errorf("%w: interview questions below minimum (%d technical, %d scenario)",
			ErrMalformedResponse, len(interview.TechnicalQuestions), len(interview.ScenarioQuestions))
	}

	return &models.CVAnalysisResult{
		AnalysisMetadata: models.AnalysisMetadata{
			Timestamp:            time.Now().UTC(),
			ParsingConfidence:    confidence,
			CVLanguage:           detectedLanguage,
			AnalysisVersion:      models.AnalysisVersion,
			ProcessingDurationMS: int(duration.Milliseconds()),
		},
		CandidateSummary: models.CandidateSummary{
			Name:            name,
			TotalScore:      total,
			Percentile:      Percentile(total),
			DetectedRole:    role,
			SeniorityLevel:  models.SeniorityLevel(seniority),
			YearsExperience: years,
		},
		DetailedScores:       *scores,
		Strengths:            SelectStrengths(raw.Strengths, scores),
		ImprovementAreas:     improvements,
		RedFlags:             flags,
		Recommendations:      recs,
		InterviewSuggestions: interview,
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
