package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// ErrorHandler answers fiber errors with their own message and everything
// else with a generic 500, logging the real cause.
func ErrorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	logger = logger.With().Str("component", "http").Logger()

	return func(c *fiber.Ctx, err error) error {
		var e *fiber.Error
		if errors.As(err, &e) {
			return c.Status(e.Code).JSON(fiber.Map{
				"error": e.Message,
			})
		}

		logger.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
}
