package models

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisRecord is the persisted form of a completed analysis. The full
// result document is stored as jsonb; the scalar columns exist for listing
// and for rebuilding the profile index without unmarshaling every row.
type AnalysisRecord struct {
	ID                   uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Filename             string    `gorm:"type:text" json:"filename"`
	RoleTarget           *string   `gorm:"type:text" json:"role_target,omitempty"`
	RequestedLanguage    string    `gorm:"type:text" json:"requested_language"`
	DetectedLanguage     string    `gorm:"type:text" json:"detected_language"`
	DetectedRole         string    `gorm:"type:text" json:"detected_role"`
	SeniorityLevel       string    `gorm:"type:text" json:"seniority_level"`
	TotalScore           float64   `gorm:"type:decimal(4,2)" json:"total_score"`
	Percentile           int       `json:"percentile"`
	ParsingConfidence    float64   `gorm:"type:decimal(3,2)" json:"parsing_confidence"`
	ProcessingDurationMS int       `json:"processing_duration_ms"`
	Result               string    `gorm:"type:jsonb" json:"-"`
	CreatedAt            time.Time `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt            time.Time `gorm:"type:timestamp;default:now()" json:"updated_at"`
}

func (AnalysisRecord) TableName() string {
	return "analyses"
}
