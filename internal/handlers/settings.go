package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/example/retailadmin/internal/services"
)

// SettingsHandler exposes the loyalty settings.
type SettingsHandler struct {
	settings *services.SettingsService
}

// NewSettingsHandler constructs SettingsHandler.
func NewSettingsHandler(settings *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// GetLoyaltySettings returns the current points_per_currency.
func (h *SettingsHandler) GetLoyaltySettings(c *fiber.Ctx) error {
	settings, err := h.settings.Get(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": settings})
}

type loyaltySettingsRequest struct {
	PointsPerCurrency decimal.Decimal `json:"points_per_currency"`
}

// UpdateLoyaltySettings sets how much must be spent per loyalty point.
func (h *SettingsHandler) UpdateLoyaltySettings(c *fiber.Ctx) error {
	var req loyaltySettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	settings, err := h.settings.UpdatePointsPerCurrency(c.UserContext(), req.PointsPerCurrency)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": settings})
}
