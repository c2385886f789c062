package handlers

import (
	"cardguard/internal/models"
	"cardguard/internal/services/rules"
	"cardguard/internal/utils"
	"cardguard/internal/utils/response"
	"cardguard/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// RuleRequest is the body of rule create and update calls.
type RuleRequest struct {
	Priority      int      `json:"priority"`
	Amount        *float64 `json:"amount"`
	Location      *string  `json:"location" validate:"omitempty,max=255"`
	TimeStart     *string  `json:"time_start" validate:"omitempty,timeofday"`
	TimeEnd       *string  `json:"time_end" validate:"omitempty,timeofday"`
	Condition     string   `json:"condition" validate:"required,condition"`
	SuccessStatus *int     `json:"success_status" validate:"required,oneof=0 1 2"`
}

func (r *RuleRequest) toModel() *models.Rule {
	return &models.Rule{
		Priority:      r.Priority,
		Amount:        r.Amount,
		Location:      r.Location,
		TimeStart:     r.TimeStart,
		TimeEnd:       r.TimeEnd,
		Condition:     models.Condition(r.Condition),
		SuccessStatus: models.Status(*r.SuccessStatus),
	}
}

type RulesHandler struct {
	ruleService rules.Service
}

func NewRulesHandler(svc rules.Service) *RulesHandler {
	return &RulesHandler{ruleService: svc}
}

func (h *RulesHandler) ListRules(c *fiber.Ctx) error {
	claims, err := utils.GetMerchantClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}

	list, err := h.ruleService.ListRules(c.UserContext(), claims.MerchantKey)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "rules retrieved", fiber.Map{"rules": list})
}

func (h *RulesHandler) CreateRule(c *fiber.Ctx) error {
	claims, err := utils.GetMerchantClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	rule, err := parseRule(c)
	if err != nil {
		return response.FromError(c, err)
	}

	if err := h.ruleService.CreateRule(c.UserContext(), claims.MerchantKey, rule); err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "rule created", fiber.Map{"rule": rule})
}

func (h *RulesHandler) UpdateRule(c *fiber.Ctx) error {
	claims, err := utils.GetMerchantClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "invalid rule id")
	}
	rule, err := parseRule(c)
	if err != nil {
		return response.FromError(c, err)
	}

	if err := h.ruleService.UpdateRule(c.UserContext(), claims.MerchantKey, uint(id), rule); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "rule updated", fiber.Map{"rule": rule})
}

func (h *RulesHandler) DeleteRule(c *fiber.Ctx) error {
	claims, err := utils.GetMerchantClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "invalid rule id")
	}

	if err := h.ruleService.DeleteRule(c.UserContext(), claims.MerchantKey, uint(id)); err != nil {
		return response.FromError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func parseRule(c *fiber.Ctx) (*models.Rule, error) {
	var req RuleRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, validation.BodyError()
	}
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}
	return req.toModel(), nil
}
