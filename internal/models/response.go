package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type HealthResponse struct {
	Status          string `json:"status"`
	Version         string `json:"version"`
	AgentSDKVersion string `json:"agent_sdk_version"`
	UptimeSeconds   int64  `json:"uptime_seconds"`
	Environment     string `json:"environment"`
}

// AnalysisDetailResponse wraps a stored analysis for GET /v1/analyses/:id.
// Result carries the original document verbatim, so clients see the exact
// payload the analyze endpoint produced.
type AnalysisDetailResponse struct {
	ID        uuid.UUID       `json:"id"`
	Filename  string          `json:"filename"`
	CreatedAt time.Time       `json:"created_at"`
	Result    json.RawMessage `json:"result"`
}

type AnalysisSummary struct {
	ID             uuid.UUID `json:"id"`
	Filename       string    `json:"filename"`
	DetectedRole   string    `json:"detected_role"`
	SeniorityLevel string    `json:"seniority_level"`
	TotalScore     float64   `json:"total_score"`
	Percentile     int       `json:"percentile"`
	CreatedAt      time.Time `json:"created_at"`
}

type SimilarProfile struct {
	AnalysisID   string  `json:"analysis_id"`
	Score        float32 `json:"score"`
	DetectedRole string  `json:"detected_role"`
	TotalScore   float64 `json:"total_score"`
}
