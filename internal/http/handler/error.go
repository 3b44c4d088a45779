package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"attachbridge/internal/http/middleware"
	"attachbridge/internal/logging"
	"attachbridge/internal/model"
)

// writeError writes the {success:false, message} body every failure uses.
func writeError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(model.AttachResult{Success: false, Message: message})
}

// ErrorHandler returns a Fiber global error handler.
//
// Unknown routes and wrong methods both become 404 "Not found"; recovered
// panics and other unexpected errors become 500 with the reason attached.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			switch fe.Code {
			case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
				return writeError(c, fiber.StatusNotFound, "Not found")
			default:
				return writeError(c, fe.Code, fe.Message)
			}
		}

		logger.ErrorContext(c.UserContext(), "request failed",
			slog.String(logging.KeyRequestID, middleware.RequestIDFromContext(c.UserContext())),
			slog.String(logging.KeyPath, c.Path()),
			logging.Err(err),
		)
		return writeError(c, fiber.StatusInternalServerError, "Internal server error: "+err.Error())
	}
}
