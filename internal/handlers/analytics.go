package handlers

import (
	"cardguard/internal/services/analytics"
	"cardguard/internal/utils"
	"cardguard/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type AnalyticsHandler struct {
	analyticsService analytics.Service
}

func NewAnalyticsHandler(svc analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: svc}
}

func (h *AnalyticsHandler) GetStats(c *fiber.Ctx) error {
	claims, err := utils.GetMerchantClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}

	stats, err := h.analyticsService.GetStats(c.UserContext(), claims.MerchantKey, c.Query("window", "all"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "stats retrieved", stats)
}
