package middleware

import (
	"github.com/gofiber/fiber/v2"

	"noelserdna/cyber-cv-analyzer/internal/handlers"
	"noelserdna/cyber-cv-analyzer/internal/metrics"
)

// NewConcurrencyLimiter admits at most limit analyses at once. A request
// arriving while every slot is held is rejected immediately with a
// Retry-After hint; it never queues.
func NewConcurrencyLimiter(limit int) fiber.Handler {
	if limit < 1 {
		limit = 1
	}
	slots := make(chan struct{}, limit)

	return func(c *fiber.Ctx) error {
		select {
		case slots <- struct{}{}:
			defer func() { <-slots }()
			return c.Next()
		default:
			metrics.AdmissionRejections.Inc()
			c.Set(fiber.HeaderRetryAfter, "5")
			return handlers.RespondError(c, fiber.StatusServiceUnavailable, handlers.CodeConcurrencyLimit,
				"Server is processing the maximum number of analyses, try again shortly")
		}
	}
}
