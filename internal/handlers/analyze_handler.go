package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"noelserdna/cyber-cv-analyzer/internal/metrics"
	"noelserdna/cyber-cv-analyzer/internal/models"
	"noelserdna/cyber-cv-analyzer/internal/repositories"
	"noelserdna/cyber-cv-analyzer/internal/services"
)

var roleTargetPattern = regexp.MustCompile(`^[A-Za-z0-9 _-]{3,100}$`)

type AnalyzeHandler struct {
	analyzer     services.AnalyzerService
	storage      services.StorageService
	analysisRepo repositories.AnalysisRepository
	indexer      services.Indexer
	maxFileSize  int64
}

func NewAnalyzeHandler(
	analyzer services.AnalyzerService,
	storage services.StorageService,
	analysisRepo repositories.AnalysisRepository,
	indexer services.Indexer,
	maxFileSize int64,
) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer:     analyzer,
		storage:      storage,
		analysisRepo: analysisRepo,
		indexer:      indexer,
		maxFileSize:  maxFileSize,
	}
}

// HandleAnalyzeCV handles POST /v1/analyze-cv. Validation happens in a fixed
// order: file presence, content type, size, emptiness, then the optional form
// fields. History persistence and indexing run after the response payload is
// final and never change the outcome.
func (h *AnalyzeHandler) HandleAnalyzeCV(c *fiber.Ctx) error {
	requestID := RequestID(c)
	started := time.Now()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return RespondError(c, fiber.StatusBadRequest, CodeValidation, "Multipart field 'file' is required")
	}

	if contentType := fileHeader.Header.Get("Content-Type"); contentType != "application/pdf" {
		return RespondError(c, fiber.StatusBadRequest, CodeInvalidFormat, "Only application/pdf uploads are accepted")
	}

	if fileHeader.Size > h.maxFileSize {
		return RespondError(c, fiber.StatusRequestEntityTooLarge, CodeFileTooLarge,
			fmt.Sprintf("File exceeds the %d MB limit", h.maxFileSize/(1024*1024)))
	}
	if fileHeader.Size == 0 {
		return RespondError(c, fiber.StatusBadRequest, CodeEmptyFile, "Uploaded file is empty")
	}

	roleTarget := strings.TrimSpace(c.FormValue("role_target"))
	if roleTarget != "" && !roleTargetPattern.MatchString(roleTarget) {
		return RespondError(c, fiber.StatusBadRequest, CodeValidation,
			"role_target must be 3-100 characters of letters, digits, spaces, hyphens or underscores")
	}

	language := c.FormValue("language")
	switch language {
	case "":
		language = "es"
	case "es", "en":
	default:
		return RespondError(c, fiber.StatusBadRequest, CodeValidation, "language must be 'es' or 'en'")
	}

	scratchPath, err := h.storage.SaveUpload(fileHeader)
	if err != nil {
		log.Printf("❌ [%s] failed to stage upload: %v", requestID, err)
		return RespondError(c, fiber.StatusInternalServerError, CodeInternal, "An unexpected error occurred")
	}
	defer func() {
		if err := h.storage.Remove(scratchPath); err != nil {
			log.Printf("⚠️  [%s] %v", requestID, err)
		}
	}()

	log.Printf("🔄 [%s] Analyzing %s (role_target=%q, language=%s, %d bytes)",
		requestID, fileHeader.Filename, roleTarget, language, fileHeader.Size)

	result, err := h.analyzer.AnalyzeCV(c.UserContext(), services.AnalysisRequest{
		FilePath:   scratchPath,
		Filename:   fileHeader.Filename,
		RoleTarget: roleTarget,
		Language:   language,
	})
	if err != nil {
		return h.respondAnalysisError(c, requestID, err)
	}

	// The request-level duration supersedes the analyzer's own measurement.
	result.AnalysisMetadata.ProcessingDurationMS = int(time.Since(started).Milliseconds())

	metrics.Analyses.WithLabelValues("success").Inc()
	metrics.AnalysisDuration.Observe(time.Since(started).Seconds())

	h.persistAndIndex(requestID, fileHeader.Filename, roleTarget, language, result)

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *AnalyzeHandler) respondAnalysisError(c *fiber.Ctx, requestID string, err error) error {
	log.Printf("❌ [%s] analysis failed: %v", requestID, err)

	var exhausted *services.RetryExhaustedError
	switch {
	case errors.Is(err, services.ErrPDFUnreadable):
		metrics.Analyses.WithLabelValues("bad_pdf").Inc()
		return RespondError(c, fiber.StatusBadRequest, CodeInvalidFormat, "File could not be parsed as PDF")

	case errors.Is(err, services.ErrPDFNoText):
		metrics.Analyses.WithLabelValues("bad_pdf").Inc()
		return RespondError(c, fiber.StatusBadRequest, CodeValidation, "No text could be extracted from the PDF")

	case errors.Is(err, context.DeadlineExceeded):
		metrics.Analyses.WithLabelValues("timeout").Inc()
		metrics.AgentTimeouts.Inc()
		c.Set(fiber.HeaderRetryAfter, "120")
		return RespondError(c, fiber.StatusServiceUnavailable, CodeAnalysisTimeout,
			"Analysis did not finish in time, try again later")

	case errors.As(err, &exhausted):
		metrics.Analyses.WithLabelValues("upstream_error").Inc()
		c.Set(fiber.HeaderRetryAfter, "60")
		return RespondError(c, fiber.StatusServiceUnavailable, CodeServiceUnavail,
			"Analysis service is temporarily unavailable")

	case errors.Is(err, services.ErrRateLimited),
		errors.Is(err, services.ErrServiceUnavailable),
		errors.Is(err, services.ErrAPIFailure),
		errors.Is(err, services.ErrUpstreamRejected):
		metrics.Analyses.WithLabelValues("upstream_error").Inc()
		c.Set(fiber.HeaderRetryAfter, "60")
		return RespondError(c, fiber.StatusServiceUnavailable, CodeServiceUnavail,
			"Analysis service is temporarily unavailable")

	case errors.Is(err, services.ErrMalformedResponse):
		metrics.Analyses.WithLabelValues("malformed").Inc()
		return RespondError(c, fiber.StatusBadRequest, CodeValidation,
			"Analysis produced an invalid result, try again")

	case errors.Is(err, context.Canceled):
		metrics.Analyses.WithLabelValues("canceled").Inc()
		c.Set(fiber.HeaderRetryAfter, "60")
		return RespondError(c, fiber.StatusServiceUnavailable, CodeServiceUnavail, "Request was cancelled")

	default:
		metrics.Analyses.WithLabelValues("internal_error").Inc()
		return RespondError(c, fiber.StatusInternalServerError, CodeInternal, "An unexpected error occurred")
	}
}

// persistAndIndex stores the finished analysis and queues it for the profile
// index. Failures here only log; the client already has its result.
func (h *AnalyzeHandler) persistAndIndex(requestID, filename, roleTarget, language string, result *models.CVAnalysisResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		log.Printf("⚠️  [%s] failed to serialize analysis for history: %v", requestID, err)
		return
	}

	record := &models.AnalysisRecord{
		ID:                   uuid.New(),
		Filename:             filename,
		RequestedLanguage:    language,
		DetectedLanguage:     result.AnalysisMetadata.CVLanguage,
		DetectedRole:         result.CandidateSummary.DetectedRole,
		SeniorityLevel:       string(result.CandidateSummary.SeniorityLevel),
		TotalScore:           result.CandidateSummary.TotalScore,
		Percentile:           result.CandidateSummary.Percentile,
		ParsingConfidence:    result.AnalysisMetadata.ParsingConfidence,
		ProcessingDurationMS: result.AnalysisMetadata.ProcessingDurationMS,
		Result:               string(payload),
	}
	if roleTarget != "" {
		record.RoleTarget = &roleTarget
	}

	if err := h.analysisRepo.Create(record); err != nil {
		log.Printf("⚠️  [%s] failed to persist analysis: %v", requestID, err)
		return
	}

	if h.indexer.Enqueue(services.IndexJob{
		AnalysisID:   record.ID.String(),
		DetectedRole: record.DetectedRole,
		TotalScore:   record.TotalScore,
		Text:         services.ProfileSignature(result),
	}) {
		log.Printf("📥 [%s] analysis %s stored and queued for indexing", requestID, record.ID)
	} else {
		log.Printf("📥 [%s] analysis %s stored (index queue full)", requestID, record.ID)
	}
}
