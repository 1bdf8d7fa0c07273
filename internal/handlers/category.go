package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/retailadmin/internal/services"
)

// CategoryHandler manages product categories.
type CategoryHandler struct {
	categories *services.CategoryService
}

// NewCategoryHandler constructs CategoryHandler.
func NewCategoryHandler(categories *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// ListCategories returns all categories ordered by name.
func (h *CategoryHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.categories.ListCategories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": categories})
}

// GetCategory returns a single category by ID.
func (h *CategoryHandler) GetCategory(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	category, err := h.categories.GetCategory(c.UserContext(), id)
	if err != nil {
		return notFoundAs(err, "category not found")
	}
	return c.JSON(fiber.Map{"success": true, "data": category})
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

func (r categoryRequest) toInput() services.CategoryInput {
	return services.CategoryInput{Name: r.Name, Description: r.Description, Image: r.Image}
}

// CreateCategory persists a new category.
func (h *CategoryHandler) CreateCategory(c *fiber.Ctx) error {
	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	category, err := h.categories.SaveCategory(c.UserContext(), uuid.Nil, req.toInput())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": category})
}

// UpdateCategory renames or re-describes an existing category.
func (h *CategoryHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	category, err := h.categories.SaveCategory(c.UserContext(), id, req.toInput())
	if err != nil {
		return notFoundAs(err, "category not found")
	}
	return c.JSON(fiber.Map{"success": true, "data": category})
}

// DeleteCategory removes a category no product is assigned to.
func (h *CategoryHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.categories.DeleteCategory(c.UserContext(), id); err != nil {
		return notFoundAs(err, "category not found")
	}
	return c.JSON(fiber.Map{"success": true})
}

// RegisterCategoryRoutes attaches category routes to fiber app.
func (h *CategoryHandler) RegisterCategoryRoutes(router fiber.Router) {
	router.Get("/", h.ListCategories)
	router.Get("/:id", h.GetCategory)
	router.Post("/", h.CreateCategory)
	router.Put("/:id", h.UpdateCategory)
	router.Delete("/:id", h.DeleteCategory)
}
