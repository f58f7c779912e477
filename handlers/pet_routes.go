package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/kpizzy812/pixelpets-sub000/middleware"
	"github.com/kpizzy812/pixelpets-sub000/models"
	"github.com/kpizzy812/pixelpets-sub000/services"
)

func SetupPetRoutes(app *fiber.App, pets *services.PetService, boosts *services.BoostService, accounts *services.AccountService) {
	// 🔓 Public routes — still behind Gateway auth
	app.Get("/hall-of-fame", func(c *fiber.Ctx) error {
		list, err := pets.HallOfFame(c.QueryInt("limit", 20))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"pets": list})
	})

	app.Post("/auth/login", func(c *fiber.Ctx) error {
		var req struct {
			TelegramID   int64  `json:"telegram_id"`
			Username     string `json:"username"`
			ReferralCode string `json:"referral_code"`
		}
		if err := c.BodyParser(&req); err != nil || req.TelegramID == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		account, err := accounts.EnsureAccount(req.TelegramID, req.Username, req.ReferralCode)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(account)
	})

	// 🔐 Secured routes — require user context from the gateway
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/me", func(c *fiber.Ctx) error {
		accountID := c.Locals("account_id").(string)
		account, err := accounts.GetByID(accountID)
		if err != nil {
			return respondError(c, err)
		}
		ownedPets, err := accounts.Pets(accountID, time.Now())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"account": account, "pets": ownedPets})
	})

	secured.Post("/pets", func(c *fiber.Ctx) error {
		accountID := c.Locals("account_id").(string)
		var req struct {
			CatalogEntryID string `json:"catalog_entry_id"`
			Nickname       string `json:"nickname"`
		}
		if err := c.BodyParser(&req); err != nil || req.CatalogEntryID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		pet, err := pets.Buy(accountID, req.CatalogEntryID, req.Nickname)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(pet)
	})

	secured.Post("/pets/:id/train", func(c *fiber.Ctx) error {
		accountID := c.Locals("account_id").(string)
		pet, err := pets.StartTraining(c.Params("id"), accountID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(pet)
	})

	secured.Post("/pets/:id/claim", func(c *fiber.Ctx) error {
		accountID := c.Locals("account_id").(string)
		result, err := pets.Claim(c.Params("id"), accountID, false)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(result)
	})

	secured.Post("/pets/:id/upgrade", func(c *fiber.Ctx) error {
		accountID := c.Locals("account_id").(string)
		pet, err := pets.Upgrade(c.Params("id"), accountID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(pet)
	})

	secured.Post("/pets/:id/sell", func(c *fiber.Ctx) error {
		accountID := c.Locals("account_id").(string)
		result, err := pets.Sell(c.Params("id"), accountID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(result)
	})

	secured.Post("/pets/:id/snack", func(c *fiber.Ctx) error {
		accountID := c.Locals("account_id").(string)
		var req struct {
			Tier models.SnackTier `json:"tier"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		snack, err := boosts.BuySnack(c.Params("id"), accountID, req.Tier)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(snack)
	})

	secured.Post("/pets/:id/roi-boost", func(c *fiber.Ctx) error {
		accountID := c.Locals("account_id").(string)
		var req struct {
			BoostPercent decimal.Decimal `json:"boost_percent"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		boost, err := boosts.BuyRoiBoost(c.Params("id"), accountID, req.BoostPercent)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(boost)
	})

	secured.Post("/subscription", func(c *fiber.Ctx) error {
		accountID := c.Locals("account_id").(string)
		var req struct {
			Months int `json:"months"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		sub, err := boosts.BuySubscription(accountID, req.Months)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(sub)
	})
}
