package services_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/retailadmin/internal/models"
	"github.com/example/retailadmin/internal/services"
)

func TestCreateProductRejectsDuplicateSKUs(t *testing.T) {
	f := newFixture(t)
	f.createProduct(t, "Linen Shirt", variation("LS-M-W", "M", "white", 5000, 10))

	err := f.products.CreateProduct(f.ctx, &models.Product{
		Name:       "Cotton Shirt",
		Variations: []models.Variation{variation("LS-M-W", "M", "white", 4000, 3)},
	})
	var dup *services.DuplicateSKUError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "LS-M-W", dup.SKU)

	err = f.products.CreateProduct(f.ctx, &models.Product{
		Name: "Cotton Shirt",
		Variations: []models.Variation{
			variation("CS-M-W", "M", "white", 4000, 3),
			variation("CS-M-W", "M", "black", 4000, 3),
		},
	})
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "CS-M-W", dup.SKU)
}

func TestCreateProductValidation(t *testing.T) {
	f := newFixture(t)

	cases := map[string]*models.Product{
		"missing name":   {Variations: []models.Variation{variation("A", "M", "white", 1, 1)}},
		"missing sku":    {Name: "Shirt", Variations: []models.Variation{variation(" ", "M", "white", 1, 1)}},
		"negative stock": {Name: "Shirt", Variations: []models.Variation{variation("A", "M", "white", 1, -1)}},
		"negative price": {Name: "Shirt", Variations: []models.Variation{variation("A", "M", "white", -5, 1)}},
	}
	for name, product := range cases {
		t.Run(name, func(t *testing.T) {
			var validation *services.ValidationError
			assert.ErrorAs(t, f.products.CreateProduct(f.ctx, product), &validation)
		})
	}

	products, total, err := f.products.ListProducts(f.ctx, services.ProductFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, products)
}

func TestCreateProductRejectsRepeatedSizeAndColor(t *testing.T) {
	f := newFixture(t)

	err := f.products.CreateProduct(f.ctx, &models.Product{
		Name: "Denim Jacket",
		Variations: []models.Variation{
			variation("D-1", "M", "white", 9000, 0),
			variation("D-2", "M", "white", 9000, 5),
		},
	})
	var validation *services.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "variations[1]", validation.Field)

	_, total, err := f.products.ListProducts(f.ctx, services.ProductFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)

	jacket := f.createProduct(t, "Denim Jacket",
		variation("D-1", "M", "white", 9000, 0),
		variation("D-2", "M", "blue", 9000, 5))
	again := *jacket
	again.Variations = []models.Variation{
		variation("D-1", "M", "blue", 9000, 0),
		variation("D-2", "M", "blue", 9000, 5),
	}
	_, err = f.products.UpdateProduct(f.ctx, jacket.ID, &again, jacket.Version)
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "variations[1]", validation.Field)
	assert.Equal(t, 5, f.stock(t, jacket.ID, "M", "blue"))
}

func TestUpdateProductKeepsOwnSKUs(t *testing.T) {
	f := newFixture(t)
	shirt := f.createProduct(t, "Linen Shirt", variation("LS-M-W", "M", "white", 5000, 10))

	next := *shirt
	next.Name = "Linen Shirt (relaxed)"
	next.Variations = []models.Variation{
		variation("LS-M-W", "M", "white", 5000, 12),
		variation("LS-L-W", "L", "white", 5000, 6),
	}
	saved, err := f.products.UpdateProduct(f.ctx, shirt.ID, &next, shirt.Version)
	require.NoError(t, err)

	assert.Equal(t, "Linen Shirt (relaxed)", saved.Name)
	assert.Equal(t, shirt.CreatedAt, saved.CreatedAt)
	assert.Greater(t, saved.Version, shirt.Version)
	assert.Equal(t, 12, f.stock(t, shirt.ID, "M", "white"))
	assert.Equal(t, 18, saved.TotalStock())
}

func TestUpdateProductWithStaleVersion(t *testing.T) {
	f := newFixture(t)
	shirt := f.createProduct(t, "Linen Shirt", variation("LS-M-W", "M", "white", 5000, 10))
	customer := f.createCustomer(t, "Aye Aye")

	// an order lands after the operator opened the product form
	f.placeOrder(t, customer.ID, item(shirt.ID, "M", "white", 2))

	stale := *shirt
	stale.Variations = []models.Variation{variation("LS-M-W", "M", "white", 5000, 10)}
	_, err := f.products.UpdateProduct(f.ctx, shirt.ID, &stale, shirt.Version)
	assert.ErrorIs(t, err, services.ErrStoreConflict)
	assert.Equal(t, 8, f.stock(t, shirt.ID, "M", "white"))
}

func TestUpdateProductRequiresVersion(t *testing.T) {
	f := newFixture(t)
	shirt := f.createProduct(t, "Linen Shirt", variation("LS-M-W", "M", "white", 5000, 10))
	customer := f.createCustomer(t, "Aye Aye")
	f.placeOrder(t, customer.ID, item(shirt.ID, "M", "white", 3))

	form := *shirt
	form.Variations = []models.Variation{variation("LS-M-W", "M", "white", 5000, 10)}
	_, err := f.products.UpdateProduct(f.ctx, shirt.ID, &form, 0)
	var validation *services.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "version", validation.Field)
	assert.Equal(t, 7, f.stock(t, shirt.ID, "M", "white"))
}

func TestProductCategoryMustExist(t *testing.T) {
	f := newFixture(t)
	tops, err := f.categories.SaveCategory(f.ctx, uuid.Nil, services.CategoryInput{Name: "Tops"})
	require.NoError(t, err)

	cases := map[string]string{
		"unparsable": "tops",
		"unknown":    uuid.NewString(),
	}
	for name, categoryID := range cases {
		t.Run(name, func(t *testing.T) {
			err := f.products.CreateProduct(f.ctx, &models.Product{
				Name:       "Linen Shirt",
				CategoryID: categoryID,
				Variations: []models.Variation{variation("LS-M-W", "M", "white", 5000, 10)},
			})
			var validation *services.ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, "category_id", validation.Field)
		})
	}

	shirt := &models.Product{
		Name:       "Linen Shirt",
		CategoryID: tops.ID.String(),
		Variations: []models.Variation{variation("LS-M-W", "M", "white", 5000, 10)},
	}
	require.NoError(t, f.products.CreateProduct(f.ctx, shirt))

	products, total, err := f.products.ListProducts(f.ctx, services.ProductFilter{CategoryID: tops.ID.String()})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, shirt.ID, products[0].ID)
}

func importRow(name, sku, size, color string, stock int) services.ImportRow {
	return services.ImportRow{
		Name:      name,
		BasePrice: decimal.NewFromInt(5000),
		SKU:       sku,
		Size:      size,
		Color:     color,
		Price:     decimal.NewFromInt(5000),
		Stock:     stock,
	}
}

func TestImportGroupsRowsByName(t *testing.T) {
	f := newFixture(t)

	first := importRow("Linen Shirt", "LS-M-W", "M", "white", 10)
	first.Tags = []string{"summer", " "}
	products, err := f.products.Import(f.ctx, []services.ImportRow{
		first,
		importRow("Straw Hat", "SH-OS-N", "OS", "natural", 4),
		importRow(" Linen Shirt ", "LS-L-W", "L", "white", 6),
	})
	require.NoError(t, err)
	require.Len(t, products, 2)

	shirt := products[0]
	assert.Equal(t, "Linen Shirt", shirt.Name)
	assert.Equal(t, []string{"summer"}, []string(shirt.Tags))
	require.Len(t, shirt.Variations, 2)
	assert.EqualValues(t, 1, shirt.Version)
	assert.Equal(t, 16, shirt.TotalStock())
	assert.Equal(t, "Straw Hat", products[1].Name)

	assert.Equal(t, 6, f.stock(t, shirt.ID, "L", "white"))
	_, total, err := f.products.ListProducts(f.ctx, services.ProductFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestImportWritesNothingOnError(t *testing.T) {
	f := newFixture(t)
	f.createProduct(t, "Denim Jacket", variation("DJ-M-B", "M", "blue", 9000, 2))

	cases := []struct {
		name  string
		rows  []services.ImportRow
		check func(t *testing.T, err error)
	}{
		{
			name: "sku repeated across rows",
			rows: []services.ImportRow{
				importRow("Linen Shirt", "LS-M-W", "M", "white", 10),
				importRow("Straw Hat", "LS-M-W", "OS", "natural", 4),
			},
			check: func(t *testing.T, err error) {
				var dup *services.DuplicateSKUError
				require.ErrorAs(t, err, &dup)
				assert.Equal(t, "LS-M-W", dup.SKU)
			},
		},
		{
			name: "sku already stored",
			rows: []services.ImportRow{
				importRow("Linen Shirt", "LS-M-W", "M", "white", 10),
				importRow("Straw Hat", "DJ-M-B", "OS", "natural", 4),
			},
			check: func(t *testing.T, err error) {
				var dup *services.DuplicateSKUError
				require.ErrorAs(t, err, &dup)
				assert.Equal(t, "DJ-M-B", dup.SKU)
			},
		},
		{
			name: "invalid variation",
			rows: []services.ImportRow{
				importRow("Linen Shirt", "LS-M-W", "M", "white", 10),
				importRow("Straw Hat", "SH-OS-N", "OS", "natural", -1),
			},
			check: func(t *testing.T, err error) {
				var validation *services.ValidationError
				require.ErrorAs(t, err, &validation)
				assert.Equal(t, "Straw Hat.variations[0].stock", validation.Field)
			},
		},
		{
			name: "missing name",
			rows: []services.ImportRow{importRow("", "LS-M-W", "M", "white", 10)},
			check: func(t *testing.T, err error) {
				var validation *services.ValidationError
				require.ErrorAs(t, err, &validation)
				assert.Equal(t, "rows[0].name", validation.Field)
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.products.Import(f.ctx, tc.rows)
			tc.check(t, err)

			_, total, err := f.products.ListProducts(f.ctx, services.ProductFilter{})
			require.NoError(t, err)
			assert.EqualValues(t, 1, total)
		})
	}
}

func TestListProductsSearch(t *testing.T) {
	f := newFixture(t)
	f.createProduct(t, "Linen Shirt", variation("LS-M-W", "M", "white", 5000, 10))
	f.createProduct(t, "Straw Hat", variation("SH-OS-N", "OS", "natural", 3000, 5))

	products, total, err := f.products.ListProducts(f.ctx, services.ProductFilter{Search: "hat"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Straw Hat", products[0].Name)
}
