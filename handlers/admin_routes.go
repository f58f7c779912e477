package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kpizzy812/pixelpets-sub000/middleware"
	"github.com/kpizzy812/pixelpets-sub000/services"
)

func SetupAdminRoutes(app *fiber.App, cfg *services.ConfigService) {
	admin := app.Group("/admin", middleware.UserContextMiddleware(), middleware.AdminOnly())

	// Upserting a setting invalidates the economy-constant cache, so the
	// next claim already uses the new value.
	admin.Put("/settings/:key", func(c *fiber.Ctx) error {
		var req struct {
			Value string `json:"value"`
		}
		if err := c.BodyParser(&req); err != nil || req.Value == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if err := cfg.Set(c.Params("key"), req.Value); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"key": c.Params("key"), "value": req.Value})
	})
}
