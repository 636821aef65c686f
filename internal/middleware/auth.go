package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"noelserdna/cyber-cv-analyzer/internal/handlers"
)

// NewAPIKeyAuth checks X-API-Key against the configured key set. Comparison
// is constant-time per candidate key. An empty key set rejects everything.
func NewAPIKeyAuth(keys []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		provided := c.Get("X-API-Key")
		if provided != "" {
			for _, key := range keys {
				if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) == 1 {
					return c.Next()
				}
			}
		}
		return handlers.RespondError(c, fiber.StatusUnauthorized, handlers.CodeUnauthorized, "Invalid or missing API key")
	}
}
