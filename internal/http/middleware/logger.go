package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"attachbridge/internal/logging"
)

// Logger writes one structured line per HTTP request: request id, method,
// path, final status and latency in milliseconds. It must run after
// RequestID and before the handlers.
func Logger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = errorStatus(err)
		}
		rid, _ := c.Locals(RequestIDLocalKey).(string)

		logger.LogAttrs(c.UserContext(), slog.LevelInfo, "http request",
			slog.String(logging.KeyRequestID, rid),
			slog.String(logging.KeyMethod, c.Method()),
			slog.String(logging.KeyPath, c.Path()),
			slog.Int(logging.KeyStatus, status),
			slog.Float64(logging.KeyLatency, float64(time.Since(start).Microseconds())/1000),
		)

		return err
	}
}

// errorStatus is the status the error handler will answer with.
func errorStatus(err error) int {
	if e, ok := err.(*fiber.Error); ok {
		if e.Code == fiber.StatusMethodNotAllowed {
			return fiber.StatusNotFound
		}
		return e.Code
	}
	return fiber.StatusInternalServerError
}
