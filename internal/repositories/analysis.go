package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"noelserdna/cyber-cv-analyzer/internal/models"
)

// ErrAnalysisNotFound reports a lookup miss. Handlers map it to 404.
var ErrAnalysisNotFound = errors.New("analysis not found")

type AnalysisRepository interface {
	Create(record *models.AnalysisRecord) error
	FindByID(id uuid.UUID) (*models.AnalysisRecord, error)
	FindRecent(limit int) ([]models.AnalysisRecord, error)
	FindPage(offset, limit int) ([]models.AnalysisRecord, error)
}

type analysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

// Create implements AnalysisRepository.
func (r *analysisRepository) Create(record *models.AnalysisRecord) error {
	if err := r.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to create analysis record: %w", err)
	}
	return nil
}

// FindByID implements AnalysisRepository. Returns the full row, stored
// result document included.
func (r *analysisRepository) FindByID(id uuid.UUID) (*models.AnalysisRecord, error) {
	var record models.AnalysisRecord
	if err := r.db.Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnalysisNotFound
		}
		return nil, fmt.Errorf("failed to find analysis: %w", err)
	}
	return &record, nil
}

// FindRecent implements AnalysisRepository. Listing reads only the scalar
// columns; the jsonb result stays on disk.
func (r *analysisRepository) FindRecent(limit int) ([]models.AnalysisRecord, error) {
	var records []models.AnalysisRecord
	err := r.db.
		Select("id", "filename", "detected_role", "seniority_level", "total_score", "percentile", "created_at").
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	return records, nil
}

// FindPage implements AnalysisRepository. Full rows in insertion order, used
// by the reindex script to batch through the table.
func (r *analysisRepository) FindPage(offset, limit int) ([]models.AnalysisRecord, error) {
	var records []models.AnalysisRecord
	err := r.db.
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to page analyses: %w", err)
	}
	return records, nil
}
