package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/kpizzy812/pixelpets-sub000/services"
)

// respondError maps the economy error taxonomy onto HTTP statuses. All
// taxonomy errors are rejected operations with no partial state change.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrAlreadyActive),
		errors.Is(err, services.ErrCapExceeded):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrInsufficientBalance),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrNegativeBalance):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}
