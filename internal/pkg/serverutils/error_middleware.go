package serverutils

import (
	"errors"

	"course-notes-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns errors returned by handlers into responses.
// Fiber errors keep their status; anything else is logged and becomes a 500.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(fiberErr.Message)
		}

		log.Error("HTTP", "Unhandled request error", map[string]interface{}{
			"error":  err.Error(),
			"method": ctx.Method(),
			"path":   ctx.OriginalURL(),
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON("Internal server error")
	}
}
