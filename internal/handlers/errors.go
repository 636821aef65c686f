package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

// Wire error codes. Clients branch on these, not on messages.
const (
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeInvalidFormat    = "INVALID_FILE_FORMAT"
	CodeEmptyFile        = "EMPTY_FILE"
	CodeFileTooLarge     = "FILE_TOO_LARGE"
	CodeValidation       = "VALIDATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeAnalysisTimeout  = "ANALYSIS_TIMEOUT"
	CodeServiceUnavail   = "SERVICE_UNAVAILABLE"
	CodeConcurrencyLimit = "CONCURRENCY_LIMIT_REACHED"
	CodeInternal         = "INTERNAL_ERROR"
)

// RespondError writes the uniform error envelope. The message is what the
// client sees; the real cause belongs in the log, keyed by request ID.
func RespondError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error":      message,
		"error_code": code,
		"request_id": RequestID(c),
	})
}

// RequestID returns the correlation ID the requestid middleware assigned.
func RequestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}

// ErrorHandler is the app-level fallback for errors that escape handlers:
// router 404s, body-limit rejections, panics turned into errors by the
// recover middleware.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}

	log.Printf("❌ [%s] unhandled error: %v", RequestID(c), err)

	switch status {
	case fiber.StatusNotFound:
		return RespondError(c, status, CodeNotFound, "Resource not found")
	case fiber.StatusMethodNotAllowed:
		return RespondError(c, status, CodeValidation, "Method not allowed")
	case fiber.StatusRequestEntityTooLarge:
		return RespondError(c, status, CodeFileTooLarge, "File exceeds the maximum allowed size")
	default:
		return RespondError(c, status, CodeInternal, "An unexpected error occurred")
	}
}
