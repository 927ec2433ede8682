package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rs/zerolog"

	"github.com/rodrigopasa/launchajato/internal/config"
	"github.com/rodrigopasa/launchajato/internal/handlers"
	"github.com/rodrigopasa/launchajato/internal/middleware"
	"github.com/rodrigopasa/launchajato/internal/services"
)

// Version is reported by / and /health
const Version = "1.0.0"

// SetupRoutes configures all HTTP routes. The returned handler owns the
// in-flight reply deliveries.
func SetupRoutes(app *fiber.App, svc *services.Services, cfg *config.Config, storageType string, logger zerolog.Logger) *handlers.WhatsAppHandler {
	whatsapp := handlers.NewWhatsAppHandler(svc.Chatbot, svc.Sender, svc.Metrics,
		cfg.WhatsAppVerifyToken, cfg.SendTimeout, logger)
	health := handlers.NewHealthHandler(cfg.AppName, Version, storageType, svc.Sessions)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service":     cfg.AppName,
			"version":     Version,
			"environment": cfg.Environment,
			"storage":     storageType,
			"whatsapp": fiber.Map{
				"provider":           svc.Sender.Name(),
				"signature_required": cfg.WhatsAppAppSecret != "",
			},
			"endpoints": fiber.Map{
				"health":  "/health",
				"metrics": "/metrics",
				"webhook": "/webhook",
			},
		})
	})
	app.Get("/health", health.Check)

	if svc.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(svc.Metrics.Handler()))
	}

	// ========== WEBHOOK ROUTES ==========
	signature := middleware.ValidateWebhookSignature(cfg.WhatsAppAppSecret, logger)
	app.Get("/webhook", whatsapp.Verify)
	app.Post("/webhook", signature, whatsapp.HandleWebhook)

	if cfg.WhatsAppAppSecret == "" {
		logger.Warn().Msg("⚠️  webhook signature validation disabled (WHATSAPP_APP_SECRET not set)")
	}

	// Development only: drive the chatbot without a provider
	if cfg.IsDevelopment() {
		app.Post("/test/whatsapp", whatsapp.HandleTestWebhook)
	}

	return whatsapp
}
