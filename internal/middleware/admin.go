package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/noveos/backend/internal/config"
	"github.com/noveos/backend/internal/dto"
)

// AdminRequired guards management endpoints behind the shared admin token.
// The token arrives in the X-Admin-Token header and is compared in constant
// time. An unset ADMIN_TOKEN disables all admin endpoints rather than
// leaving them open.
func AdminRequired(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get("X-Admin-Token")
		if cfg.AdminToken == "" || token == "" ||
			subtle.ConstantTimeCompare([]byte(token), []byte(cfg.AdminToken)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
		return c.Next()
	}
}
