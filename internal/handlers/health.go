package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rodrigopasa/launchajato/internal/services"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	Service  string
	Version  string
	Storage  string
	sessions services.SessionStore
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service, version, storage string, sessions services.SessionStore) *HealthHandler {
	return &HealthHandler{
		Service:  service,
		Version:  version,
		Storage:  storage,
		sessions: sessions,
	}
}

// Check returns the health status of the service
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":          "OK",
		"service":         h.Service,
		"version":         h.Version,
		"storage":         h.Storage,
		"active_sessions": h.sessions.Count(),
	})
}
