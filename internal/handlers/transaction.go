package handlers

import (
	"cardguard/internal/services/authorization"
	"cardguard/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type TransactionHandler struct {
	authorizationService authorization.Service
}

func NewTransactionHandler(svc authorization.Service) *TransactionHandler {
	return &TransactionHandler{authorizationService: svc}
}

// ProcessTransaction decides a transaction. Every recorded decision is a 200
// whose body carries the status code.
func (h *TransactionHandler) ProcessTransaction(c *fiber.Ctx) error {
	var input authorization.Request
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	decision, err := h.authorizationService.ProcessTransaction(c.UserContext(), input)
	if err != nil {
		return response.FromError(c, err)
	}

	extra := fiber.Map{"transaction_id": decision.TransactionID()}
	if challenge, ok := decision.(authorization.ChallengeRequired); ok {
		extra["methods"] = challenge.Factors
	}
	return response.Decision(c, decision.Status(), decision.Message(), extra)
}
