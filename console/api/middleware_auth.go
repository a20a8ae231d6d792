package api

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"golang.org/x/crypto/bcrypt"

	"github.com/nrfta/gridcache-go/console/models"
)

const localsRole = "role"

// AuthMiddleware validates the bearer credential against stored token
// hashes and records the token's role for RequireRole. The credential
// itself is opaque to everything downstream.
func (s *Server) AuthMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		header := c.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "missing bearer token"})
		}

		var tokens []models.APIToken
		err := s.db.
			WithContext(c.Context()).
			Where("revoked_at IS NULL").
			Find(&tokens).
			Error
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "internal error"})
		}

		for _, t := range tokens {
			if bcrypt.CompareHashAndPassword([]byte(t.TokenHash), []byte(token)) == nil {
				c.Locals(localsRole, t.Role)
				return c.Next()
			}
		}

		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "invalid token"})
	}
}

// RequireRole rejects callers whose role ranks below min.
func (s *Server) RequireRole(min string) fiber.Handler {
	return func(c fiber.Ctx) error {
		role, _ := c.Locals(localsRole).(string)
		if !models.RoleAtLeast(role, min) {
			return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{Error: "insufficient role"})
		}
		return c.Next()
	}
}
