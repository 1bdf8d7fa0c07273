package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/example/retailadmin/internal/models"
	"github.com/example/retailadmin/internal/services"
	"github.com/example/retailadmin/internal/utils"
)

// ProductHandler manages product CRUD.
type ProductHandler struct {
	products *services.ProductService
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(products *services.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// ListProducts returns paginated products with optional filters.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	products, total, err := h.products.ListProducts(c.UserContext(), services.ProductFilter{
		CategoryID: c.Query("category_id"),
		Search:     strings.TrimSpace(c.Query("search")),
		Limit:      pg.Limit,
		Offset:     pg.Offset,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       products,
		"pagination": pg.Meta(total),
	})
}

// GetProduct loads a product with its variations.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	product, err := h.products.GetProduct(c.UserContext(), id)
	if err != nil {
		return notFoundAs(err, "product not found")
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

type productRequest struct {
	Name              string             `json:"name"`
	Description       string             `json:"description"`
	CategoryID        string             `json:"category_id"`
	BasePrice         decimal.Decimal    `json:"base_price"`
	BaseDiscountPrice decimal.Decimal    `json:"base_discount_price"`
	Images            []string           `json:"images"`
	Tags              []string           `json:"tags"`
	Variations        []variationRequest `json:"variations"`
	Version           int64              `json:"version"`
}

type variationRequest struct {
	SKU           string          `json:"sku"`
	Size          string          `json:"size"`
	Color         string          `json:"color"`
	Price         decimal.Decimal `json:"price"`
	DiscountPrice decimal.Decimal `json:"discount_price"`
	Stock         int             `json:"stock"`
	Images        []string        `json:"images"`
}

func (r productRequest) toModel() *models.Product {
	product := &models.Product{
		Name:              r.Name,
		Description:       r.Description,
		CategoryID:        r.CategoryID,
		BasePrice:         r.BasePrice,
		BaseDiscountPrice: r.BaseDiscountPrice,
		Images:            nonNil(r.Images),
		Tags:              nonNil(r.Tags),
		Variations:        make([]models.Variation, 0, len(r.Variations)),
	}
	for _, v := range r.Variations {
		product.Variations = append(product.Variations, models.Variation{
			SKU:           v.SKU,
			Size:          v.Size,
			Color:         v.Color,
			Price:         v.Price,
			DiscountPrice: v.DiscountPrice,
			Stock:         v.Stock,
			Images:        nonNil(v.Images),
		})
	}
	return product
}

// CreateProduct handles product creation.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	product := req.toModel()
	if err := h.products.CreateProduct(c.UserContext(), product); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": product})
}

// UpdateProduct replaces the product, variations and stock included. The
// version in the body must match the stored product.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	product, err := h.products.UpdateProduct(c.UserContext(), id, req.toModel(), req.Version)
	if err != nil {
		return notFoundAs(err, "product not found")
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

type importRequest struct {
	Rows []importRowRequest `json:"rows"`
}

type importRowRequest struct {
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	CategoryID        string          `json:"category_id"`
	BasePrice         decimal.Decimal `json:"base_price"`
	BaseDiscountPrice decimal.Decimal `json:"base_discount_price"`
	Tags              []string        `json:"tags"`
	Images            []string        `json:"images"`
	SKU               string          `json:"sku"`
	Size              string          `json:"size"`
	Color             string          `json:"color"`
	Price             decimal.Decimal `json:"price"`
	DiscountPrice     decimal.Decimal `json:"discount_price"`
	Stock             int             `json:"stock"`
	VariantImages     []string        `json:"variant_images"`
}

// ImportProducts creates products from parsed spreadsheet rows, one
// variation per row. Either every product is created or none is.
func (h *ProductHandler) ImportProducts(c *fiber.Ctx) error {
	var req importRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	rows := make([]services.ImportRow, 0, len(req.Rows))
	for _, r := range req.Rows {
		rows = append(rows, services.ImportRow{
			Name:              r.Name,
			Description:       r.Description,
			CategoryID:        r.CategoryID,
			BasePrice:         r.BasePrice,
			BaseDiscountPrice: r.BaseDiscountPrice,
			Tags:              r.Tags,
			Images:            r.Images,
			SKU:               r.SKU,
			Size:              r.Size,
			Color:             r.Color,
			Price:             r.Price,
			DiscountPrice:     r.DiscountPrice,
			Stock:             r.Stock,
			VariantImages:     r.VariantImages,
		})
	}

	products, err := h.products.Import(c.UserContext(), rows)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": products})
}

// DeleteProduct removes a product. Orders keep their item snapshots.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.products.DeleteProduct(c.UserContext(), id); err != nil {
		return notFoundAs(err, "product not found")
	}

	return c.JSON(fiber.Map{"success": true})
}

// RegisterProductRoutes attaches product routes to fiber app.
func (h *ProductHandler) RegisterProductRoutes(router fiber.Router) {
	router.Get("/", h.ListProducts)
	router.Get("/:id", h.GetProduct)
	router.Post("/", h.CreateProduct)
	router.Post("/import", h.ImportProducts)
	router.Put("/:id", h.UpdateProduct)
	router.Delete("/:id", h.DeleteProduct)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
