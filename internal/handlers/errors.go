package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/retailadmin/internal/services"
)

// NewErrorHandler renders every error as {"success": false, "error": ...}.
// Service errors are mapped to a status code here so handlers can return
// them unchanged. Server errors are logged with the request they failed.
func NewErrorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		fe := httpError(err)
		if fe.Code >= fiber.StatusInternalServerError {
			log.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		}
		return c.Status(fe.Code).JSON(fiber.Map{
			"success": false,
			"error":   fe.Message,
		})
	}
}

func httpError(err error) *fiber.Error {
	var (
		fiberErr     *fiber.Error
		validation   *services.ValidationError
		stock        *services.InsufficientStockError
		missing      *services.ProductNotFoundError
		variant      *services.VariantNotFoundError
		duplicateSKU *services.DuplicateSKUError
	)

	switch {
	case errors.As(err, &fiberErr):
		return fiberErr
	case errors.As(err, &validation):
		return fiber.NewError(fiber.StatusBadRequest, validation.Error())
	case errors.Is(err, services.ErrInvalidAdjustment):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.As(err, &stock):
		return fiber.NewError(fiber.StatusConflict, stock.Error())
	case errors.As(err, &missing):
		return fiber.NewError(fiber.StatusNotFound, missing.Error())
	case errors.As(err, &variant):
		return fiber.NewError(fiber.StatusConflict, variant.Error())
	case errors.As(err, &duplicateSKU):
		return fiber.NewError(fiber.StatusConflict, duplicateSKU.Error())
	case errors.Is(err, services.ErrStoreConflict), errors.Is(err, services.ErrCategoryInUse):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "not found")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "internal server error")
	}
}

// notFoundAs replaces a store ErrNotFound with a 404 carrying msg.
func notFoundAs(err error, msg string) error {
	if errors.Is(err, services.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, msg)
	}
	return err
}

func parseID(c *fiber.Ctx, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(param))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+param)
	}
	return id, nil
}
