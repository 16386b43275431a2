// Package middleware provides HTTP middleware for the fiber app:
// JWT authentication and minimum-role gating.
package middleware

import (
	"strings"

	"campuspay/internal/models"
	"campuspay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware validates bearer tokens and attaches the resolved
// principal to the request context.
type AuthMiddleware struct {
	jwtSecret string
}

func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{jwtSecret: jwtSecret}
}

// Handler extracts and validates the Authorization header. On success the
// claims are the only authoritative source of the acting principal.
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return utils.Unauthorized(c, "missing authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return utils.Unauthorized(c, "invalid authorization format")
	}

	claims, err := utils.ParseAccessToken(strings.TrimPrefix(authHeader, "Bearer "), m.jwtSecret)
	if err != nil {
		return utils.Unauthorized(c, "invalid token")
	}

	c.Locals("claims", claims)
	c.Locals("userID", claims.UserID)
	return c.Next()
}

// RequireRole returns a middleware enforcing a minimum role. A role that
// does not map to a known rank is denied, never an error.
func RequireRole(minRole string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("claims").(*models.UserClaims)
		if !ok || claims == nil {
			return utils.Unauthorized(c, "unauthorized")
		}
		if !models.HasMinRole(claims.Role, minRole) {
			return utils.Forbidden(c, "permission denied")
		}
		return c.Next()
	}
}

// Claims returns the principal attached by the auth middleware.
func Claims(c *fiber.Ctx) (*models.UserClaims, bool) {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	return claims, ok && claims != nil
}
