package middleware

import "github.com/gofiber/fiber/v2"

// CORS marks every response, errors included, as readable from any origin.
// Preflight answers are left to the route handlers.
func CORS() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
		return c.Next()
	}
}
