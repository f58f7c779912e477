package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kpizzy812/pixelpets-sub000/middleware"
	"github.com/kpizzy812/pixelpets-sub000/services"
)

func SetupReferralRoutes(app *fiber.App, referrals *services.ReferralService, ledger *services.LedgerService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/referrals", func(c *fiber.Ctx) error {
		accountID := c.Locals("account_id").(string)
		summary, err := referrals.Stats(accountID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(summary)
	})

	secured.Get("/ledger", func(c *fiber.Ctx) error {
		accountID := c.Locals("account_id").(string)
		entries, err := ledger.History(accountID, c.QueryInt("limit", 50), c.QueryInt("offset", 0))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"entries": entries})
	})
}
