// Package middleware provides HTTP middleware for the fiber app.
package middleware

import (
	"strings"

	"cardguard/internal/errors"
	"cardguard/internal/services/auth"
	"cardguard/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthMiddleware validates merchant session tokens and stores the claims in
// the request context.
type AuthMiddleware struct {
	authService auth.Service
	logger      *zap.Logger
}

func NewAuthMiddleware(authService auth.Service, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		logger:      logger,
	}
}

func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return response.Unauthorized(c, "missing authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return response.Unauthorized(c, "invalid authorization format")
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	claims, err := m.authService.Authenticate(c.UserContext(), tokenString)
	if err != nil {
		if errors.KindOf(err) == errors.KindStore {
			m.logger.Error("token authentication failed", zap.Error(err))
			return response.ServerError(c)
		}
		return response.Unauthorized(c, "invalid token")
	}

	c.Locals("claims", claims)
	return c.Next()
}
