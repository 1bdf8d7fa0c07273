package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/retailadmin/internal/services"
)

// RiderHandler manages delivery riders.
type RiderHandler struct {
	riders *services.RiderService
}

func NewRiderHandler(riders *services.RiderService) *RiderHandler {
	return &RiderHandler{riders: riders}
}

type riderRequest struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Status string `json:"status"`
}

func (h *RiderHandler) ListRiders(c *fiber.Ctx) error {
	riders, err := h.riders.ListRiders(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": riders})
}

func (h *RiderHandler) CreateRider(c *fiber.Ctx) error {
	var req riderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	rider, err := h.riders.SaveRider(c.UserContext(), uuid.Nil, req.Name, req.Phone, req.Status)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": rider})
}

func (h *RiderHandler) UpdateRider(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req riderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	rider, err := h.riders.SaveRider(c.UserContext(), id, req.Name, req.Phone, req.Status)
	if err != nil {
		return notFoundAs(err, "rider not found")
	}
	return c.JSON(fiber.Map{"success": true, "data": rider})
}

func (h *RiderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	rider, err := h.riders.SetStatus(c.UserContext(), id, req.Status)
	if err != nil {
		return notFoundAs(err, "rider not found")
	}
	return c.JSON(fiber.Map{"success": true, "data": rider})
}

func (h *RiderHandler) DeleteRider(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.riders.DeleteRider(c.UserContext(), id); err != nil {
		return notFoundAs(err, "rider not found")
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *RiderHandler) RegisterRiderRoutes(router fiber.Router) {
	router.Get("/", h.ListRiders)
	router.Post("/", h.CreateRider)
	router.Put("/:id", h.UpdateRider)
	router.Patch("/:id/status", h.UpdateStatus)
	router.Delete("/:id", h.DeleteRider)
}
