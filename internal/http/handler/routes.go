package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"attachbridge/internal/logging"
	"attachbridge/internal/model"
	"attachbridge/internal/service"
)

// ReadyText is the body of the readiness routes.
const ReadyText = "Outlook Auto Attach Server is running"

// RegisterRoutes attaches the bridge routes to the provided Fiber app, which
// should be built from Config so paths match exactly.
// Anything not registered here is answered by ErrorHandler with 404.
func RegisterRoutes(app *fiber.App, svc service.AttachService, logger *slog.Logger) {
	app.Post("/attach", Attach(svc, logger))
	app.Options("/attach", Preflight())
	// Add instead of Get: Get also registers HEAD.
	app.Add(fiber.MethodGet, "/", Status())
	app.Add(fiber.MethodGet, "/status", Status())
}

// Config is the fiber configuration the bridge routes assume: case-sensitive,
// no trailing-slash folding, and ErrorHandler for everything unmatched.
func Config(logger *slog.Logger) fiber.Config {
	return fiber.Config{
		ErrorHandler:  ErrorHandler(logger),
		StrictRouting: true,
		CaseSensitive: true,
	}
}

// Attach handles POST /attach with a {"filePath": "..."} body. The body is
// parsed as JSON whatever the Content-Type says.
func Attach(svc service.AttachService, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := decodeAttach(c.Body())
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "Invalid JSON in request body")
		}
		if req.FilePath == "" {
			return writeError(c, fiber.StatusBadRequest, "Missing filePath in request")
		}

		out, err := svc.Attach(c.UserContext(), req.FilePath)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrCopyFailed) {
				return writeError(c, fiber.StatusInternalServerError, err.Error())
			}
			return writeError(c, fiber.StatusInternalServerError, "Internal server error: "+err.Error())
		}

		logger.InfoContext(c.UserContext(), "attach handled",
			slog.String(logging.KeyOriginal, filepath.Base(req.FilePath)),
			slog.String(logging.KeyUnique, filepath.Base(out.Copy.DestinationPath)),
			logging.Status(out.Result.Success),
			slog.Bool(logging.KeySuccess, out.Result.Success),
			slog.String(logging.KeyMessage, out.Result.Message),
		)

		return c.Status(fiber.StatusOK).JSON(out.Result)
	}
}

// Preflight answers OPTIONS /attach with an empty 200.
func Preflight() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
		c.Set(fiber.HeaderAccessControlAllowMethods, "POST, OPTIONS")
		c.Set(fiber.HeaderAccessControlAllowHeaders, "Content-Type")
		c.Status(fiber.StatusOK)
		return nil
	}
}

// Status is the plain-text readiness probe served on / and /status.
func Status() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Type("txt")
		return c.Status(fiber.StatusOK).SendString(ReadyText)
	}
}

// decodeAttach accepts only a JSON object; arrays, scalars and null are
// rejected like malformed input.
func decodeAttach(body []byte) (model.AttachRequest, error) {
	var req model.AttachRequest
	if !bytes.HasPrefix(bytes.TrimSpace(body), []byte("{")) {
		return req, errors.New("body is not a JSON object")
	}
	err := json.Unmarshal(body, &req)
	return req, err
}
