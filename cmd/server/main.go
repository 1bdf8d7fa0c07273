package main

import (
	"log"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/retailadmin/internal/config"
	"github.com/example/retailadmin/internal/database"
	"github.com/example/retailadmin/internal/events"
	"github.com/example/retailadmin/internal/handlers"
	applog "github.com/example/retailadmin/internal/logger"
	"github.com/example/retailadmin/internal/routes"
	"github.com/example/retailadmin/internal/services"
)

func main() {
	cfg := config.Load()
	lg := applog.New(applog.Options{
		Service: "retailadmin",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	store := buildStore(cfg, lg)

	notifiers := services.MultiNotifier{
		services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat),
	}
	if cfg.RabbitMQURL != "" {
		publisher, err := events.ConnectRabbitMQ(cfg.RabbitMQURL, cfg.RabbitMQExchange, lg)
		if err != nil {
			log.Fatalf("rabbitmq connection failed: %v", err)
		}
		defer publisher.Close()
		notifiers = append(notifiers, publisher)
	}

	settings := services.NewSettingsService(store, cfg.DefaultPointsPerCurrency)
	loyalty := services.NewLoyaltyService(store, settings, notifiers, lg)

	app := fiber.New(fiber.Config{
		AppName:      "Retail Admin Backend",
		ErrorHandler: handlers.NewErrorHandler(lg),
	})

	app.Use(recover.New())
	app.Use(logger.New())

	routes.Register(app, routes.Services{
		Settlement: services.NewSettlementService(store, notifiers, lg),
		Orders:     services.NewOrderService(store, loyalty, notifiers, lg),
		Products:   services.NewProductService(store),
		Categories: services.NewCategoryService(store),
		Reports:    services.NewReportService(store),
		Customers:  services.NewCustomerService(store),
		Loyalty:    loyalty,
		Riders:     services.NewRiderService(store),
		Settings:   settings,
	}, cfg.JWTSecret, lg)

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}

func buildStore(cfg *config.Config, lg *slog.Logger) services.Store {
	if cfg.StoreDriver == config.StoreDriverMemory {
		lg.Warn("using in-memory store, data is lost on restart")
		return database.NewMemoryStore(cfg.SettleMaxAttempts)
	}
	db := database.Connect(cfg.DatabaseURL, !cfg.IsProduction())
	return database.NewGormStore(db, cfg.SettleMaxAttempts, lg)
}
