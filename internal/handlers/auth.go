package handlers

import (
	"cardguard/internal/services/auth"
	"cardguard/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService auth.Service
}

func NewAuthHandler(authService auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// IssueToken exchanges a merchant API key for a session token.
func (h *AuthHandler) IssueToken(c *fiber.Ctx) error {
	var input struct {
		APIKey string `json:"api_key"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	token, err := h.authService.IssueToken(c.UserContext(), input.APIKey)
	if err != nil {
		return response.FromError(c, err)
	}
	return c.JSON(token)
}
