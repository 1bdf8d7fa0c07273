package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/retailadmin/internal/models"
)

// ProductService manages the catalog. SKU uniqueness is checked against the
// store on every save rather than against whatever the caller last listed.
type ProductService struct {
	store Store
}

// NewProductService constructs ProductService.
func NewProductService(store Store) *ProductService {
	return &ProductService{store: store}
}

func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.store.GetProduct(ctx, id)
}

func (s *ProductService) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error) {
	return s.store.ListProducts(ctx, filter)
}

// CreateProduct validates and stores a new product.
func (s *ProductService) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	if err := s.checkCategory(ctx, product.CategoryID); err != nil {
		return err
	}
	if err := s.checkSKUs(ctx, uuid.Nil, product.Variations); err != nil {
		return err
	}
	product.ID = uuid.Nil
	product.Version = 0
	return s.store.CreateProduct(ctx, product)
}

// UpdateProduct replaces the product content, stock levels included.
// expectedVersion is the version the operator edited; if an order settled
// since then the update is refused with ErrStoreConflict so stock written by
// the settlement is never overwritten with a stale form.
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, in *models.Product, expectedVersion int64) (*models.Product, error) {
	if expectedVersion <= 0 {
		return nil, invalid("version", "required")
	}
	if err := validateProduct(in); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	if err := s.checkSKUs(ctx, id, in.Variations); err != nil {
		return nil, err
	}

	var saved *models.Product
	err := s.store.RunInTransaction(ctx, func(tx Tx) error {
		current, err := tx.GetProduct(id)
		if err != nil {
			return err
		}
		if current.Version != expectedVersion {
			return ErrStoreConflict
		}

		next := *in
		next.ID = current.ID
		next.CreatedAt = current.CreatedAt
		next.Version = current.Version
		if err := tx.PutProduct(&next); err != nil {
			return err
		}
		saved = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteProduct(ctx, id)
}

func validateProduct(p *models.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return invalid("name", "required")
	}
	if p.BasePrice.IsNegative() {
		return invalid("base_price", "cannot be negative")
	}

	seen := make(map[string]struct{}, len(p.Variations))
	options := make(map[[2]string]int, len(p.Variations))
	for i := range p.Variations {
		v := &p.Variations[i]
		field := fmt.Sprintf("variations[%d]", i)
		v.SKU = strings.TrimSpace(v.SKU)
		if v.SKU == "" {
			return invalid(field+".sku", "required")
		}
		if _, dup := seen[v.SKU]; dup {
			return &DuplicateSKUError{SKU: v.SKU}
		}
		seen[v.SKU] = struct{}{}
		// stock is keyed by size and color, so each pair may appear once
		option := [2]string{v.Size, v.Color}
		if first, dup := options[option]; dup {
			return invalid(field, fmt.Sprintf("size %q and color %q repeat variations[%d]", v.Size, v.Color, first))
		}
		options[option] = i
		if v.Stock < 0 {
			return invalid(field+".stock", "cannot be negative")
		}
		if v.Price.IsNegative() || v.DiscountPrice.IsNegative() {
			return invalid(field+".price", "cannot be negative")
		}
	}
	return nil
}

// checkCategory rejects a category_id that does not name a stored category.
func (s *ProductService) checkCategory(ctx context.Context, categoryID string) error {
	if categoryID == "" {
		return nil
	}
	id, err := uuid.Parse(categoryID)
	if err != nil {
		return invalid("category_id", "invalid id")
	}
	_, err = s.store.GetCategory(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return invalid("category_id", "category not found")
	}
	return err
}

// ImportRow is one already-parsed import line: a single variation plus the
// product fields it belongs to. Rows sharing a name form one product, whose
// product fields come from the first of them.
type ImportRow struct {
	Name              string
	Description       string
	CategoryID        string
	BasePrice         decimal.Decimal
	BaseDiscountPrice decimal.Decimal
	Tags              []string
	Images            []string

	SKU           string
	Size          string
	Color         string
	Price         decimal.Decimal
	DiscountPrice decimal.Decimal
	Stock         int
	VariantImages []string
}

// Import groups rows into products and creates all of them in one
// transaction. Nothing is written if any product is invalid or any SKU is
// taken, by the store or by another row.
func (s *ProductService) Import(ctx context.Context, rows []ImportRow) ([]*models.Product, error) {
	if len(rows) == 0 {
		return nil, invalid("rows", "nothing to import")
	}

	var products []*models.Product
	byName := make(map[string]*models.Product)
	for i, row := range rows {
		name := strings.TrimSpace(row.Name)
		if name == "" {
			return nil, invalid(fmt.Sprintf("rows[%d].name", i), "required")
		}
		product, ok := byName[name]
		if !ok {
			product = &models.Product{
				Name:              name,
				Description:       strings.TrimSpace(row.Description),
				CategoryID:        strings.TrimSpace(row.CategoryID),
				BasePrice:         row.BasePrice,
				BaseDiscountPrice: row.BaseDiscountPrice,
				Tags:              nonEmpty(row.Tags),
				Images:            nonEmpty(row.Images),
				Variations:        []models.Variation{},
			}
			byName[name] = product
			products = append(products, product)
		}
		product.Variations = append(product.Variations, models.Variation{
			SKU:           row.SKU,
			Size:          strings.TrimSpace(row.Size),
			Color:         strings.TrimSpace(row.Color),
			Price:         row.Price,
			DiscountPrice: row.DiscountPrice,
			Stock:         row.Stock,
			Images:        nonEmpty(row.VariantImages),
		})
	}

	var all []models.Variation
	taken := make(map[string]struct{})
	for _, product := range products {
		if err := validateProduct(product); err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				return nil, invalid(product.Name+"."+ve.Field, ve.Message)
			}
			return nil, err
		}
		if err := s.checkCategory(ctx, product.CategoryID); err != nil {
			return nil, err
		}
		for _, v := range product.Variations {
			if _, dup := taken[v.SKU]; dup {
				return nil, &DuplicateSKUError{SKU: v.SKU}
			}
			taken[v.SKU] = struct{}{}
		}
		all = append(all, product.Variations...)
	}
	if err := s.checkSKUs(ctx, uuid.Nil, all); err != nil {
		return nil, err
	}

	err := s.store.RunInTransaction(ctx, func(tx Tx) error {
		for _, product := range products {
			product.ID = uuid.Nil
			product.Version = 0
			if err := tx.CreateProduct(product); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// checkSKUs rejects SKUs that another product already uses.
func (s *ProductService) checkSKUs(ctx context.Context, self uuid.UUID, variations []models.Variation) error {
	if len(variations) == 0 {
		return nil
	}
	skus := make([]string, 0, len(variations))
	for _, v := range variations {
		skus = append(skus, v.SKU)
	}

	owners, err := s.store.FindProductsBySKU(ctx, skus)
	if err != nil {
		return err
	}
	wanted := make(map[string]struct{}, len(skus))
	for _, sku := range skus {
		wanted[sku] = struct{}{}
	}
	for _, owner := range owners {
		if owner.ID == self {
			continue
		}
		for _, v := range owner.Variations {
			if _, ok := wanted[v.SKU]; ok {
				return &DuplicateSKUError{SKU: v.SKU}
			}
		}
	}
	return nil
}
