package handlers

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"noelserdna/cyber-cv-analyzer/internal/models"
	"noelserdna/cyber-cv-analyzer/internal/repositories"
	"noelserdna/cyber-cv-analyzer/internal/services"
)

type HistoryHandler struct {
	analysisRepo repositories.AnalysisRepository
	gemini       services.GeminiService
	index        services.ProfileIndexService
}

func NewHistoryHandler(
	analysisRepo repositories.AnalysisRepository,
	gemini services.GeminiService,
	index services.ProfileIndexService,
) *HistoryHandler {
	return &HistoryHandler{
		analysisRepo: analysisRepo,
		gemini:       gemini,
		index:        index,
	}
}

// HandleGetAnalysis handles GET /v1/analyses/:id.
func (h *HistoryHandler) HandleGetAnalysis(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return RespondError(c, fiber.StatusBadRequest, CodeValidation, "Invalid analysis ID format")
	}

	record, err := h.analysisRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrAnalysisNotFound) {
			return RespondError(c, fiber.StatusNotFound, CodeNotFound, "Analysis not found")
		}
		log.Printf("❌ [%s] history lookup failed: %v", RequestID(c), err)
		return RespondError(c, fiber.StatusInternalServerError, CodeInternal, "An unexpected error occurred")
	}

	return c.JSON(models.AnalysisDetailResponse{
		ID:        record.ID,
		Filename:  record.Filename,
		CreatedAt: record.CreatedAt,
		Result:    json.RawMessage(record.Result),
	})
}

// HandleListAnalyses handles GET /v1/analyses.
func (h *HistoryHandler) HandleListAnalyses(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	records, err := h.analysisRepo.FindRecent(limit)
	if err != nil {
		log.Printf("❌ [%s] history listing failed: %v", RequestID(c), err)
		return RespondError(c, fiber.StatusInternalServerError, CodeInternal, "An unexpected error occurred")
	}

	summaries := make([]models.AnalysisSummary, 0, len(records))
	for _, r := range records {
		summaries = append(summaries, models.AnalysisSummary{
			ID:             r.ID,
			Filename:       r.Filename,
			DetectedRole:   r.DetectedRole,
			SeniorityLevel: r.SeniorityLevel,
			TotalScore:     r.TotalScore,
			Percentile:     r.Percentile,
			CreatedAt:      r.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{
		"analyses": summaries,
		"count":    len(summaries),
	})
}

// HandleSimilarProfiles handles GET /v1/analyses/:id/similar. The stored
// profile signature is re-embedded and searched against the index, excluding
// the queried analysis itself.
func (h *HistoryHandler) HandleSimilarProfiles(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return RespondError(c, fiber.StatusBadRequest, CodeValidation, "Invalid analysis ID format")
	}

	limit := c.QueryInt("limit", 5)
	if limit < 1 || limit > 20 {
		limit = 5
	}

	record, err := h.analysisRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrAnalysisNotFound) {
			return RespondError(c, fiber.StatusNotFound, CodeNotFound, "Analysis not found")
		}
		log.Printf("❌ [%s] history lookup failed: %v", RequestID(c), err)
		return RespondError(c, fiber.StatusInternalServerError, CodeInternal, "An unexpected error occurred")
	}

	var result models.CVAnalysisResult
	if err := json.Unmarshal([]byte(record.Result), &result); err != nil {
		log.Printf("❌ [%s] stored analysis %s is not parseable: %v", RequestID(c), id, err)
		return RespondError(c, fiber.StatusInternalServerError, CodeInternal, "An unexpected error occurred")
	}

	embedding, err := h.gemini.GenerateEmbedding(c.UserContext(), services.ProfileSignature(&result))
	if err != nil {
		log.Printf("❌ [%s] failed to embed profile signature: %v", RequestID(c), err)
		c.Set(fiber.HeaderRetryAfter, "60")
		return RespondError(c, fiber.StatusServiceUnavailable, CodeServiceUnavail, "Similarity search is temporarily unavailable")
	}

	profiles, err := h.index.SearchProfiles(c.UserContext(), embedding, id.String(), limit)
	if err != nil {
		log.Printf("❌ [%s] profile search failed: %v", RequestID(c), err)
		c.Set(fiber.HeaderRetryAfter, "60")
		return RespondError(c, fiber.StatusServiceUnavailable, CodeServiceUnavail, "Similarity search is temporarily unavailable")
	}

	return c.JSON(fiber.Map{
		"analysis_id": id.String(),
		"similar":     profiles,
	})
}
