// Package response renders API replies. Every failure carries one of the
// stable decision codes alongside a human-readable message.
package response

import (
	"cardguard/internal/errors"
	"cardguard/internal/models"

	"github.com/gofiber/fiber/v2"
)

func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

// Decision renders a recorded outcome. extra is merged into the body.
func Decision(c *fiber.Ctx, status models.Status, message string, extra fiber.Map) error {
	body := fiber.Map{
		"status":  int(status),
		"message": message,
	}
	for k, v := range extra {
		body[k] = v
	}
	return c.JSON(body)
}

func Error(c *fiber.Ctx, httpStatus int, message string) error {
	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  int(models.StatusDenied),
		"message": message,
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

func ServerError(c *fiber.Ctx) error {
	return Error(c, fiber.StatusInternalServerError, "internal error")
}

func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, message)
}

func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, message)
}

// ValidationError lists the failed fields next to the message.
func ValidationError(c *fiber.Ctx, err *errors.DomainError) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"status":  int(models.StatusDenied),
		"message": err.Message,
		"fields":  err.Fields,
	})
}

// FromError maps a service error to a reply. Store and unknown errors never
// expose their cause.
func FromError(c *fiber.Ctx, err error) error {
	de, ok := errors.As(err)
	if !ok {
		return ServerError(c)
	}
	switch de.Kind {
	case errors.KindValidation:
		return ValidationError(c, de)
	case errors.KindClient:
		switch {
		case de.Is(errors.ErrRuleNotFound), de.Is(errors.ErrCardholderNotFound):
			return NotFound(c, de.Message)
		case de.Is(errors.ErrInvalidCredentials):
			return Unauthorized(c, de.Message)
		default:
			return BadRequest(c, de.Message)
		}
	default:
		return ServerError(c)
	}
}
