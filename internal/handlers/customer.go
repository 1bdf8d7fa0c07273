package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/retailadmin/internal/middleware"
	"github.com/example/retailadmin/internal/models"
	"github.com/example/retailadmin/internal/services"
	"github.com/example/retailadmin/internal/utils"
)

// CustomerHandler manages customer profiles, notes and loyalty points.
type CustomerHandler struct {
	customers *services.CustomerService
	loyalty   *services.LoyaltyService
}

// NewCustomerHandler constructs CustomerHandler.
func NewCustomerHandler(customers *services.CustomerService, loyalty *services.LoyaltyService) *CustomerHandler {
	return &CustomerHandler{customers: customers, loyalty: loyalty}
}

type customerRequest struct {
	Name      string           `json:"name"`
	Phone     string           `json:"phone"`
	Addresses []models.Address `json:"addresses"`
	Tags      []string         `json:"tags"`
}

func (r customerRequest) toProfile() services.CustomerProfile {
	return services.CustomerProfile{
		Name:      r.Name,
		Phone:     r.Phone,
		Addresses: r.Addresses,
		Tags:      r.Tags,
	}
}

func (h *CustomerHandler) ListCustomers(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	customers, total, err := h.customers.ListCustomers(c.UserContext(), services.CustomerFilter{
		Search: strings.TrimSpace(c.Query("search")),
		Limit:  pg.Limit,
		Offset: pg.Offset,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       customers,
		"pagination": pg.Meta(total),
	})
}

func (h *CustomerHandler) GetCustomer(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	customer, err := h.customers.GetCustomer(c.UserContext(), id)
	if err != nil {
		return notFoundAs(err, "customer not found")
	}

	return c.JSON(fiber.Map{"success": true, "data": customer})
}

func (h *CustomerHandler) CreateCustomer(c *fiber.Ctx) error {
	var req customerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	customer, err := h.customers.CreateCustomer(c.UserContext(), req.toProfile())
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": customer})
}

// UpdateCustomer edits the profile. Spend, order count and points are
// ignored if sent.
func (h *CustomerHandler) UpdateCustomer(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req customerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	customer, err := h.customers.UpdateProfile(c.UserContext(), id, req.toProfile())
	if err != nil {
		return notFoundAs(err, "customer not found")
	}

	return c.JSON(fiber.Map{"success": true, "data": customer})
}

func (h *CustomerHandler) DeleteCustomer(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.customers.DeleteCustomer(c.UserContext(), id); err != nil {
		return notFoundAs(err, "customer not found")
	}

	return c.JSON(fiber.Map{"success": true})
}

func (h *CustomerHandler) AddNote(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req noteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	note, err := h.customers.AddNote(c.UserContext(), id, req.Text)
	if err != nil {
		return notFoundAs(err, "customer not found")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": note})
}

func (h *CustomerHandler) RemoveNote(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	noteID, err := parseID(c, "noteId")
	if err != nil {
		return err
	}

	if err := h.customers.RemoveNote(c.UserContext(), id, noteID); err != nil {
		return notFoundAs(err, "note not found")
	}

	return c.JSON(fiber.Map{"success": true})
}

type adjustPointsRequest struct {
	Adjustment int    `json:"adjustment"`
	Reason     string `json:"reason"`
}

// AdjustPoints applies a manual loyalty adjustment made by the current staff.
func (h *CustomerHandler) AdjustPoints(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req adjustPointsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	entry, err := h.loyalty.AdjustPoints(c.UserContext(), services.AdjustPointsInput{
		CustomerID: id,
		Adjustment: req.Adjustment,
		Reason:     req.Reason,
		Actor:      middleware.ActorName(c),
	})
	if err != nil {
		return notFoundAs(err, "customer not found")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": entry})
}

// ListLoyaltyTransactions returns the customer's points ledger.
func (h *CustomerHandler) ListLoyaltyTransactions(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	entries, err := h.loyalty.ListTransactions(c.UserContext(), id)
	if err != nil {
		return notFoundAs(err, "customer not found")
	}

	return c.JSON(fiber.Map{"success": true, "data": entries})
}

// RegisterCustomerRoutes attaches customer routes to the router.
func (h *CustomerHandler) RegisterCustomerRoutes(router fiber.Router) {
	router.Get("/", h.ListCustomers)
	router.Post("/", h.CreateCustomer)
	router.Get("/:id", h.GetCustomer)
	router.Put("/:id", h.UpdateCustomer)
	router.Delete("/:id", h.DeleteCustomer)
	router.Post("/:id/notes", h.AddNote)
	router.Delete("/:id/notes/:noteId", h.RemoveNote)
	router.Get("/:id/loyalty", h.ListLoyaltyTransactions)
	router.Post("/:id/loyalty", h.AdjustPoints)
}
