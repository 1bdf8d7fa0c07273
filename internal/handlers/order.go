package handlers

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/retailadmin/internal/services"
	"github.com/example/retailadmin/internal/utils"
)

// OrderHandler manages order endpoints.
type OrderHandler struct {
	settlement *services.SettlementService
	orders     *services.OrderService
	log        *slog.Logger
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(settlement *services.SettlementService, orders *services.OrderService, log *slog.Logger) *OrderHandler {
	return &OrderHandler{settlement: settlement, orders: orders, log: log}
}

type orderItemRequest struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
}

type orderRequest struct {
	CustomerID   string             `json:"customer_id"`
	AddressIndex int                `json:"address_index"`
	Items        []orderItemRequest `json:"items"`
}

func (r orderRequest) toInput() (services.OrderInput, error) {
	in := services.OrderInput{AddressIndex: r.AddressIndex}

	if strings.TrimSpace(r.CustomerID) != "" {
		id, err := uuid.Parse(r.CustomerID)
		if err != nil {
			return in, &services.ValidationError{Field: "customer_id", Message: "invalid id"}
		}
		in.CustomerID = id
	}

	in.Items = make([]services.OrderItemInput, 0, len(r.Items))
	for _, item := range r.Items {
		var productID uuid.UUID
		if strings.TrimSpace(item.ProductID) != "" {
			id, err := uuid.Parse(item.ProductID)
			if err != nil {
				return in, &services.ValidationError{Field: "product_id", Message: "invalid id"}
			}
			productID = id
		}
		in.Items = append(in.Items, services.OrderItemInput{
			ProductID: productID,
			Size:      item.Size,
			Color:     item.Color,
			Quantity:  item.Quantity,
		})
	}
	return in, nil
}

// ListOrders returns orders, newest first.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	filter := services.OrderFilter{
		Status: c.Query("status"),
		Search: strings.TrimSpace(c.Query("search")),
		Limit:  pg.Limit,
		Offset: pg.Offset,
	}
	if v := c.Query("customer_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid customer_id")
		}
		filter.CustomerID = &id
	}

	orders, total, err := h.orders.ListOrders(c.UserContext(), filter)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       orders,
		"pagination": pg.Meta(total),
	})
}

// GetOrder returns a single order.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	order, err := h.orders.GetOrder(c.UserContext(), id)
	if err != nil {
		return notFoundAs(err, "order not found")
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// CreateOrder settles a new order against stock and the customer aggregates.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req orderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	in, err := req.toInput()
	if err != nil {
		return err
	}

	order, err := h.settlement.CreateOrder(c.UserContext(), in)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": order})
}

// UpdateOrder replaces the items of an order.
func (h *OrderHandler) UpdateOrder(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req orderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	in, err := req.toInput()
	if err != nil {
		return err
	}

	order, err := h.settlement.EditOrder(c.UserContext(), id, in)
	if err != nil {
		return notFoundAs(err, "order not found")
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus changes the order status. Completing an order posts loyalty
// points; if that fails the status change still stands and a warning is
// returned with it.
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	change, err := h.orders.ChangeStatus(c.UserContext(), id, strings.TrimSpace(req.Status))
	if change == nil {
		return notFoundAs(err, "order not found")
	}

	resp := fiber.Map{
		"success": true,
		"data": fiber.Map{
			"order":           change.Order,
			"previous_status": change.PreviousStatus,
			"points_posted":   change.PointsPosted,
		},
	}
	if err != nil {
		h.log.Warn("order status changed but points were not posted", "order_id", id, "error", err)
		resp["warning"] = "order status updated but loyalty points could not be posted"
	}
	return c.JSON(resp)
}

type deliveryRequest struct {
	PaymentStatus   *string `json:"payment_status"`
	PaymentMethod   *string `json:"payment_method"`
	DeliveryStatus  *string `json:"delivery_status"`
	AssignedRiderID *string `json:"assigned_rider_id"`
}

// UpdateDelivery edits payment and delivery fields and the assigned rider.
func (h *OrderHandler) UpdateDelivery(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req deliveryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	order, err := h.orders.UpdateDelivery(c.UserContext(), id, services.DeliveryUpdate{
		PaymentStatus:  req.PaymentStatus,
		PaymentMethod:  req.PaymentMethod,
		DeliveryStatus: req.DeliveryStatus,
		RiderID:        req.AssignedRiderID,
	})
	if err != nil {
		return notFoundAs(err, "order not found")
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type noteRequest struct {
	Text string `json:"text"`
}

// AddNote appends to the notes or delivery_notes of an order.
func (h *OrderHandler) AddNote(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req noteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	note, err := h.orders.AddNote(c.UserContext(), id, services.NoteKind(c.Params("kind")), req.Text)
	if err != nil {
		return notFoundAs(err, "order not found")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": note})
}

// RemoveNote deletes a note by id.
func (h *OrderHandler) RemoveNote(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	noteID, err := parseID(c, "noteId")
	if err != nil {
		return err
	}

	if err := h.orders.RemoveNote(c.UserContext(), id, services.NoteKind(c.Params("kind")), noteID); err != nil {
		return notFoundAs(err, "note not found")
	}

	return c.JSON(fiber.Map{"success": true})
}

// DeleteOrder removes an order. Stock and customer totals are not reverted.
func (h *OrderHandler) DeleteOrder(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.orders.DeleteOrder(c.UserContext(), id); err != nil {
		return notFoundAs(err, "order not found")
	}

	return c.JSON(fiber.Map{"success": true})
}

// RegisterOrderRoutes attaches order routes to the router.
func (h *OrderHandler) RegisterOrderRoutes(router fiber.Router) {
	router.Get("/", h.ListOrders)
	router.Post("/", h.CreateOrder)
	router.Get("/:id", h.GetOrder)
	router.Put("/:id", h.UpdateOrder)
	router.Delete("/:id", h.DeleteOrder)
	router.Patch("/:id/status", h.UpdateStatus)
	router.Patch("/:id/delivery", h.UpdateDelivery)
	router.Post("/:id/:kind", h.AddNote)
	router.Delete("/:id/:kind/:noteId", h.RemoveNote)
}
