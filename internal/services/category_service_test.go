package services_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/retailadmin/internal/models"
	"github.com/example/retailadmin/internal/services"
)

func TestSaveCategory(t *testing.T) {
	f := newFixture(t)

	tops, err := f.categories.SaveCategory(f.ctx, uuid.Nil, services.CategoryInput{Name: "  Summer Tops ", Description: "light"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, tops.ID)
	assert.Equal(t, "Summer Tops", tops.Name)
	assert.Equal(t, "summer-tops", tops.Slug)

	_, err = f.categories.SaveCategory(f.ctx, uuid.Nil, services.CategoryInput{Name: "summer  tops!"})
	var validation *services.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "name", validation.Field)

	_, err = f.categories.SaveCategory(f.ctx, uuid.Nil, services.CategoryInput{Name: "  "})
	require.ErrorAs(t, err, &validation)

	renamed, err := f.categories.SaveCategory(f.ctx, tops.ID, services.CategoryInput{Name: "Summer Tops", Image: "tops.jpg"})
	require.NoError(t, err)
	assert.Equal(t, tops.ID, renamed.ID)
	assert.Equal(t, tops.CreatedAt, renamed.CreatedAt)
	assert.Equal(t, "tops.jpg", renamed.Image)

	_, err = f.categories.SaveCategory(f.ctx, uuid.New(), services.CategoryInput{Name: "Hats"})
	assert.ErrorIs(t, err, services.ErrNotFound)

	categories, err := f.categories.ListCategories(f.ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 1)
}

func TestDeleteCategoryInUse(t *testing.T) {
	f := newFixture(t)
	tops, err := f.categories.SaveCategory(f.ctx, uuid.Nil, services.CategoryInput{Name: "Tops"})
	require.NoError(t, err)

	shirt := &models.Product{
		Name:       "Linen Shirt",
		CategoryID: tops.ID.String(),
		Variations: []models.Variation{variation("LS-M-W", "M", "white", 5000, 10)},
	}
	require.NoError(t, f.products.CreateProduct(f.ctx, shirt))

	assert.ErrorIs(t, f.categories.DeleteCategory(f.ctx, tops.ID), services.ErrCategoryInUse)
	_, err = f.categories.GetCategory(f.ctx, tops.ID)
	require.NoError(t, err)

	require.NoError(t, f.products.DeleteProduct(f.ctx, shirt.ID))
	require.NoError(t, f.categories.DeleteCategory(f.ctx, tops.ID))
	_, err = f.categories.GetCategory(f.ctx, tops.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	assert.ErrorIs(t, f.categories.DeleteCategory(f.ctx, tops.ID), services.ErrNotFound)
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Summer Tops":       "summer-tops",
		"  T-Shirts & Tees": "t-shirts-tees",
		"Longyi 2024":       "longyi-2024",
		"!!!":               "",
	}
	for in, want := range cases {
		assert.Equal(t, want, services.Slugify(in), in)
	}
}
