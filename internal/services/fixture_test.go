package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/example/retailadmin/internal/database"
	"github.com/example/retailadmin/internal/logger"
	"github.com/example/retailadmin/internal/models"
	"github.com/example/retailadmin/internal/services"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []services.Event
}

func (r *recordingNotifier) Notify(_ context.Context, evt services.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

func (r *recordingNotifier) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	ctx        context.Context
	store      *database.MemoryStore
	events     *recordingNotifier
	settings   *services.SettingsService
	loyalty    *services.LoyaltyService
	settlement *services.SettlementService
	orders     *services.OrderService
	products   *services.ProductService
	categories *services.CategoryService
	reports    *services.ReportService
	customers  *services.CustomerService
	riders     *services.RiderService
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithAttempts(t, 5)
}

func newFixtureWithAttempts(t *testing.T, maxAttempts int) *fixture {
	t.Helper()

	store := database.NewMemoryStore(maxAttempts)
	events := &recordingNotifier{}
	log := logger.Discard()

	settings := services.NewSettingsService(store, decimal.NewFromInt(1000))
	loyalty := services.NewLoyaltyService(store, settings, events, log)

	return &fixture{
		ctx:        context.Background(),
		store:      store,
		events:     events,
		settings:   settings,
		loyalty:    loyalty,
		settlement: services.NewSettlementService(store, events, log),
		orders:     services.NewOrderService(store, loyalty, events, log),
		products:   services.NewProductService(store),
		categories: services.NewCategoryService(store),
		reports:    services.NewReportService(store),
		customers:  services.NewCustomerService(store),
		riders:     services.NewRiderService(store),
	}
}

func variation(sku, size, color string, price int64, stock int) models.Variation {
	return models.Variation{
		SKU:   sku,
		Size:  size,
		Color: color,
		Price: decimal.NewFromInt(price),
		Stock: stock,
	}
}

func (f *fixture) createProduct(t *testing.T, name string, variations ...models.Variation) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:       name,
		BasePrice:  decimal.NewFromInt(1000),
		Variations: variations,
	}
	require.NoError(t, f.products.CreateProduct(f.ctx, product))
	return product
}

func (f *fixture) createCustomer(t *testing.T, name string) *models.Customer {
	t.Helper()
	customer, err := f.customers.CreateCustomer(f.ctx, services.CustomerProfile{
		Name:  name,
		Phone: "09-555-0100",
		Addresses: []models.Address{
			{Label: "home", Street: "12 Bogyoke Rd", Township: "Pabedan", City: "Yangon", PostalCode: "11141"},
		},
	})
	require.NoError(t, err)
	return customer
}

func (f *fixture) stock(t *testing.T, productID uuid.UUID, size, color string) int {
	t.Helper()
	product, err := f.store.GetProduct(f.ctx, productID)
	require.NoError(t, err)
	idx := product.FindVariation(size, color)
	require.GreaterOrEqual(t, idx, 0, "variation %s/%s missing", size, color)
	return product.Variations[idx].Stock
}

// version is the stored version of a product, as an edit form would load it.
func (f *fixture) version(t *testing.T, productID uuid.UUID) int64 {
	t.Helper()
	product, err := f.store.GetProduct(f.ctx, productID)
	require.NoError(t, err)
	return product.Version
}

func (f *fixture) customer(t *testing.T, id uuid.UUID) *models.Customer {
	t.Helper()
	customer, err := f.store.GetCustomer(f.ctx, id)
	require.NoError(t, err)
	return customer
}

func item(productID uuid.UUID, size, color string, qty int) services.OrderItemInput {
	return services.OrderItemInput{ProductID: productID, Size: size, Color: color, Quantity: qty}
}

func (f *fixture) placeOrder(t *testing.T, customerID uuid.UUID, items ...services.OrderItemInput) *models.Order {
	t.Helper()
	order, err := f.settlement.CreateOrder(f.ctx, services.OrderInput{CustomerID: customerID, Items: items})
	require.NoError(t, err)
	return order
}
