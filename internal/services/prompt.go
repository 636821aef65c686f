package services

import (
	"fmt"
	"strings"

	"noelserdna/cyber-cv-analyzer/internal/models"
)

// cvExcerptBudget caps how much CV text goes into the prompt. Past this point
// extra pages stop moving scores and only add latency and token cost.
const cvExcerptBudget = 30000

type PromptBuilder struct {
	chunker TextChuncker
}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{chunker: NewTextChunker()}
}

// BuildAnalysisPrompt assembles the full evaluation prompt in the requested
// language ("es" or anything else for English): evaluator role, optional
// target role, the 24 scoring parameters, the CV excerpt and the exact JSON
// schema the agent must return.
func (pb *PromptBuilder) BuildAnalysisPrompt(cvText, roleTarget, language string) string {
	excerpt := pb.chunker.Excerpt(cvText, cvExcerptBudget)
	params := strings.Join(parameterNames(), ", ")

	if language == "es" {
		roleLine := "Detecta el rol principal del candidato a partir del CV."
		if roleTarget != "" {
			roleLine = fmt.Sprintf("Evalúa la idoneidad del candidato para el rol objetivo: %s.", roleTarget)
		}
		return fmt.Sprintf(`Eres un evaluador senior de talento en ciberseguridad. Analiza el siguiente CV y produce una evaluación estructurada y objetiva.

%s

Puntúa cada uno de estos 24 parámetros de 0 a 10 (usa 0 cuando el CV no aporte datos):
%s

CV DEL CANDIDATO:
%s

Devuelve la evaluación EXACTAMENTE con este esquema JSON:
%s

Reglas:
- Responde SOLO con JSON válido, sin texto adicional ni marcas de código.
- Justifica cada puntuación con evidencia literal del CV.
- Incluye al menos 3 preguntas técnicas y 2 de escenario en interview_questions.
- No inventes datos que el CV no contenga.`,
			roleLine, params, excerpt, responseSchema)
	}

	roleLine := "Detect the candidate's primary role from the CV."
	if roleTarget != "" {
		roleLine = fmt.Sprintf("Assess the candidate's fit for the target role: %s.", roleTarget)
	}
	return fmt.Sprintf(`You are a senior cybersecurity talent evaluator. Analyze the following CV and produce a structured, objective assessment.

%s

Score each of these 24 parameters from 0 to 10 (use 0 when the CV gives no data):
%s

CANDIDATE CV:
%s

Return the assessment using EXACTLY this JSON schema:
%s

Rules:
- Respond ONLY with valid JSON, no extra text and no code fences.
- Back every score with literal evidence from the CV.
- Include at least 3 technical and 2 scenario entries in interview_questions.
- Do not invent facts the CV does not contain.`,
		roleLine, params, excerpt, responseSchema)
}

const responseSchema = `{
  "candidate": {
    "name": "<full name or Unknown>",
    "detected_role": "<primary cybersecurity role>",
    "seniority_level": "<Junior|Mid|Senior|Lead|Executive>",
    "years_experience": {"total_it": <number>, "cybersecurity": <number>, "current_role": <number>}
  },
  "parameters": {
    "<parameter_name>": {"score": <0.0-10.0>, "justification": "<at least 20 characters>", "evidence": ["<literal CV quote>"]}
  },
  "strengths": [
    {"area": "<strength area>", "description": "<description>", "score": <0.0-10.0>, "market_value": "<high|medium|low>"}
  ],
  "improvement_areas": [
    {"area": "<area>", "current_score": <0.0-10.0>, "gap_description": "<at least 30 characters>", "recommendations": ["<concrete action>"], "priority": "<high|medium|low>"}
  ],
  "red_flags": [
    {"type": "<employment_gap|skill_inconsistency|job_hopping|outdated_skills>", "severity": "<low|medium|high>", "description": "<description>", "impact": "<impact on the candidacy>"}
  ],
  "recommendations": {
    "certifications": ["<certification>"],
    "training": ["<training>"],
    "experience_areas": ["<area to build experience in>"],
    "next_role_suggestions": ["<role>"]
  },
  "interview_questions": {
    "technical": ["<technical question>"],
    "scenario": ["<scenario question>"],
    "verification": ["<verification question>"]
  }
}`

func parameterNames() []string {
	refs := (&models.DetailedScores{}).Ordered()
	names := make([]string, len(refs))
	for i, ref := range refs {
		names[i] = ref.Name
	}
	return names
}

// ProfileSignature renders the searchable essence of an analysis as short
// text for embedding: role, seniority, total score, strength areas and the
// parameters scored at or above the strength bar. CV text itself never goes
// into the index.
func ProfileSignature(result *models.CVAnalysisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "role: %s\n", result.CandidateSummary.DetectedRole)
	fmt.Fprintf(&b, "seniority: %s\n", result.CandidateSummary.SeniorityLevel)
	fmt.Fprintf(&b, "total score: %.2f\n", result.CandidateSummary.TotalScore)

	areas := make([]string, 0, len(result.Strengths))
	for _, s := range result.Strengths {
		areas = append(areas, s.Area)
	}
	if len(areas) > 0 {
		fmt.Fprintf(&b, "strengths: %s\n", strings.Join(areas, ", "))
	}

	for _, ref := range result.DetailedScores.Ordered() {
		if ref.Param.Score >= strengthThreshold {
			fmt.Fprintf(&b, "%s: %.1f\n", ref.Name, ref.Param.Score)
		}
	}
	return b.String()
}
