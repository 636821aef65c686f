package handlers

import (
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"

	"noelserdna/cyber-cv-analyzer/internal/config"
	"noelserdna/cyber-cv-analyzer/internal/models"
)

type HealthHandler struct {
	cfg        config.ServerConfig
	startedAt  time.Time
	sdkVersion string
}

func NewHealthHandler(cfg config.ServerConfig) *HealthHandler {
	return &HealthHandler{
		cfg:        cfg,
		startedAt:  time.Now(),
		sdkVersion: agentSDKVersion(),
	}
}

// HandleHealth handles GET /health. Unauthenticated, always 200 as long as
// the process answers.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(models.HealthResponse{
		Status:          "healthy",
		Version:         h.cfg.Version,
		AgentSDKVersion: h.sdkVersion,
		UptimeSeconds:   int64(time.Since(h.startedAt).Seconds()),
		Environment:     h.cfg.Env,
	})
}

// agentSDKVersion reads the genai module version from build info. "unknown"
// outside module-aware builds.
func agentSDKVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, dep := range info.Deps {
		if dep.Path == "google.golang.org/genai" {
			return dep.Version
		}
	}
	return "unknown"
}
