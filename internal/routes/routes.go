package routes

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/example/retailadmin/internal/handlers"
	"github.com/example/retailadmin/internal/middleware"
	"github.com/example/retailadmin/internal/services"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	Settlement *services.SettlementService
	Orders     *services.OrderService
	Products   *services.ProductService
	Categories *services.CategoryService
	Reports    *services.ReportService
	Customers  *services.CustomerService
	Loyalty    *services.LoyaltyService
	Riders     *services.RiderService
	Settings   *services.SettingsService
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, svc Services, jwtSecret string, log *slog.Logger) {
	orderHandler := handlers.NewOrderHandler(svc.Settlement, svc.Orders, log)
	productHandler := handlers.NewProductHandler(svc.Products)
	categoryHandler := handlers.NewCategoryHandler(svc.Categories)
	reportHandler := handlers.NewReportHandler(svc.Reports)
	customerHandler := handlers.NewCustomerHandler(svc.Customers, svc.Loyalty)
	riderHandler := handlers.NewRiderHandler(svc.Riders)
	settingsHandler := handlers.NewSettingsHandler(svc.Settings)

	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "status": "ok"})
	})

	// Everything else requires a staff token.
	protected := api.Group("", middleware.AuthMiddleware(jwtSecret))

	orderHandler.RegisterOrderRoutes(protected.Group("/orders"))
	productHandler.RegisterProductRoutes(protected.Group("/products"))
	categoryHandler.RegisterCategoryRoutes(protected.Group("/categories"))
	reportHandler.RegisterReportRoutes(protected.Group("/reports"))
	customerHandler.RegisterCustomerRoutes(protected.Group("/customers"))
	riderHandler.RegisterRiderRoutes(protected.Group("/riders"))

	settings := protected.Group("/settings")
	settings.Get("/loyalty", settingsHandler.GetLoyaltySettings)
	settings.Put("/loyalty", settingsHandler.UpdateLoyaltySettings)
}
