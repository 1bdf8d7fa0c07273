package services_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/retailadmin/internal/models"
	"github.com/example/retailadmin/internal/services"
)

func TestUpdateProfileLeavesAggregatesAlone(t *testing.T) {
	f := newFixture(t)
	shirt := f.createProduct(t, "Linen Shirt", variation("LS-M-W", "M", "white", 5000, 10))
	customer := f.createCustomer(t, "Aye Aye")
	f.placeOrder(t, customer.ID, item(shirt.ID, "M", "white", 2))

	updated, err := f.customers.UpdateProfile(f.ctx, customer.ID, services.CustomerProfile{
		Name:      "Aye Aye Mon",
		Phone:     "09-555-0199",
		Addresses: []models.Address{{Street: "3 Inya Rd", City: "Yangon"}},
		Tags:      []string{"vip", " "},
	})
	require.NoError(t, err)

	assert.Equal(t, "Aye Aye Mon", updated.Name)
	assert.Equal(t, []string{"vip"}, []string(updated.Tags))
	assert.Equal(t, 1, updated.TotalOrders)
	assert.True(t, decimal.NewFromInt(10000).Equal(updated.TotalSpent))
}

func TestCreateCustomerValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.customers.CreateCustomer(f.ctx, services.CustomerProfile{Phone: "09-555"})
	var validation *services.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "name", validation.Field)

	_, err = f.customers.CreateCustomer(f.ctx, services.CustomerProfile{Name: "Aye Aye"})
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "phone", validation.Field)
}

func TestCustomerNotes(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer(t, "Aye Aye")

	note, err := f.customers.AddNote(f.ctx, customer.ID, "prefers evening delivery")
	require.NoError(t, err)
	require.Len(t, f.customer(t, customer.ID).Notes, 1)

	require.NoError(t, f.customers.RemoveNote(f.ctx, customer.ID, note.ID))
	assert.Empty(t, f.customer(t, customer.ID).Notes)
}
