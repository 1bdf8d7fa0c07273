package services

import (
	"context"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/example/retailadmin/internal/models"
)

// CategoryService manages product categories.
type CategoryService struct {
	store Store
}

// NewCategoryService constructs CategoryService.
func NewCategoryService(store Store) *CategoryService {
	return &CategoryService{store: store}
}

func (s *CategoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *CategoryService) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.store.GetCategory(ctx, id)
}

// CategoryInput is the editable part of a category.
type CategoryInput struct {
	Name        string
	Description string
	Image       string
}

// SaveCategory creates a category when id is uuid.Nil and updates it
// otherwise. The slug follows the name and must be unique.
func (s *CategoryService) SaveCategory(ctx context.Context, id uuid.UUID, in CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name", "required")
	}
	slug := Slugify(name)
	if slug == "" {
		return nil, invalid("name", "must contain letters or digits")
	}

	existing, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range existing {
		if c.Slug == slug && c.ID != id {
			return nil, invalid("name", "a category with this name already exists")
		}
	}

	category := &models.Category{
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(in.Description),
		Image:       strings.TrimSpace(in.Image),
	}
	if id != uuid.Nil {
		current, err := s.store.GetCategory(ctx, id)
		if err != nil {
			return nil, err
		}
		category.ID = current.ID
		category.CreatedAt = current.CreatedAt
	}
	if err := s.store.SaveCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes a category that no product references.
func (s *CategoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.store.GetCategory(ctx, id); err != nil {
		return err
	}
	_, assigned, err := s.store.ListProducts(ctx, ProductFilter{CategoryID: id.String(), Limit: 1})
	if err != nil {
		return err
	}
	if assigned > 0 {
		return ErrCategoryInUse
	}
	return s.store.DeleteCategory(ctx, id)
}

// Slugify lowercases s and joins its letter and digit runs with dashes.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}
