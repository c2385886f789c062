package handlers

import (
	stderrors "errors"

	"cardguard/internal/errors"
	"cardguard/internal/models"
	"cardguard/internal/services/challenge"
	"cardguard/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type ChallengeHandler struct {
	challengeService challenge.Service
}

func NewChallengeHandler(svc challenge.Service) *ChallengeHandler {
	return &ChallengeHandler{challengeService: svc}
}

func (h *ChallengeHandler) RequestCode(c *fiber.Ctx) error {
	var input challenge.RequestCodeInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	issued, err := h.challengeService.RequestCode(c.UserContext(), input)
	if err != nil {
		return response.FromError(c, err)
	}

	extra := fiber.Map{"factor": issued.Factor}
	if issued.Code != "" {
		extra["code"] = issued.Code
	}
	return response.Decision(c, models.StatusApproved, "code sent", extra)
}

// VerifyCode answers a wrong code with the challenge status so the client
// keeps prompting.
func (h *ChallengeHandler) VerifyCode(c *fiber.Ctx) error {
	var input challenge.VerifyCodeInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	err := h.challengeService.VerifyCode(c.UserContext(), input)
	if stderrors.Is(err, errors.ErrInvalidCode) {
		c.Status(fiber.StatusUnauthorized)
		return response.Decision(c, models.StatusChallengeRequired, errors.ErrInvalidCode.Message, nil)
	}
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Decision(c, models.StatusApproved, "code verified", nil)
}
