package utils

import (
	"errors"

	"cardguard/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetMerchantClaims extracts the merchant claims stored by the auth middleware.
func GetMerchantClaims(c *fiber.Ctx) (*models.MerchantClaims, error) {
	v := c.Locals("claims")
	if v == nil {
		return nil, errors.New("claims not found in context")
	}

	claims, ok := v.(*models.MerchantClaims)
	if !ok {
		return nil, errors.New("invalid claims type")
	}
	return claims, nil
}
