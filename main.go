package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/kpizzy812/pixelpets-sub000/config"
	"github.com/kpizzy812/pixelpets-sub000/handlers"
	"github.com/kpizzy812/pixelpets-sub000/logging"
	"github.com/kpizzy812/pixelpets-sub000/middleware"
	"github.com/kpizzy812/pixelpets-sub000/models"
	"github.com/kpizzy812/pixelpets-sub000/notifier"
	"github.com/kpizzy812/pixelpets-sub000/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}
	cfg := config.Load()

	if err := logging.InitLogger(cfg.Env == "production"); err != nil {
		log.Fatal("failed to initialize logger:", err)
	}
	defer logging.L().Sync()

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Account{},
		&models.PetCatalogEntry{},
		&models.Pet{},
		&models.Snack{},
		&models.RoiBoost{},
		&models.AutoClaimSubscription{},
		&models.LedgerEntry{},
		&models.ReferralReward{},
		&models.ReferralStat{},
		&models.GameSetting{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	configService := services.NewConfigService(db)
	if err := configService.SeedDefaults(); err != nil {
		log.Fatal("failed to seed settings:", err)
	}

	var n notifier.Notifier = notifier.NoopNotifier{}
	if cfg.TelegramBotToken != "" {
		n = notifier.NewTelegramNotifier(cfg.TelegramBotToken, cfg.NotifierRetries)
	} else {
		log.Println("⚠️  TELEGRAM_BOT_TOKEN not set, notifications disabled")
	}

	accountService := services.NewAccountService(db)
	referralService := services.NewReferralService(db, configService)
	petService := services.NewPetService(db, configService, referralService, n)
	boostService := services.NewBoostService(db, configService)
	ledgerService := services.NewLedgerService(db)
	sweeper := services.NewSweeperService(db, petService, configService, n)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.DisableBackgroundSweepers {
		if err := sweeper.Start(ctx, cfg.AutoClaimSweepInterval, cfg.TrainingNotifyInterval); err != nil {
			log.Fatal("failed to start sweeper:", err)
		}
		defer sweeper.Stop()
		log.Println("✅ Auto-claim and training sweeps running")
	}

	app := fiber.New(fiber.Config{})

	// 🔐 GLOBAL: only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Account-ID, X-User-Roles",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	handlers.SetupPetRoutes(app, petService, boostService, accountService)
	handlers.SetupReferralRoutes(app, referralService, ledgerService)
	handlers.SetupAdminRoutes(app, configService)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", cfg.Port)

	<-ctx.Done()
	log.Println("Shutting down server...")
	_ = app.Shutdown()
}
