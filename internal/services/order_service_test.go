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

func strPtr(s string) *string { return &s }

func TestChangeStatusRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	shirt := f.createProduct(t, "Linen Shirt", variation("LS-M-W", "M", "white", 5000, 10))
	customer := f.createCustomer(t, "Aye Aye")
	order := f.placeOrder(t, customer.ID, item(shirt.ID, "M", "white", 1))

	_, err := f.orders.ChangeStatus(f.ctx, order.ID, "shipped")
	var validation *services.ValidationError
	require.ErrorAs(t, err, &validation)

	_, err = f.orders.ChangeStatus(f.ctx, uuid.New(), models.OrderStatusCanceled)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestStatusChangeDoesNotClobberItems(t *testing.T) {
	f := newFixture(t)
	shirt := f.createProduct(t, "Linen Shirt", variation("LS-M-W", "M", "white", 5000, 10))
	customer := f.createCustomer(t, "Aye Aye")
	order := f.placeOrder(t, customer.ID, item(shirt.ID, "M", "white", 1))

	_, err := f.settlement.EditOrder(f.ctx, order.ID, services.OrderInput{
		CustomerID: customer.ID,
		Items:      []services.OrderItemInput{item(shirt.ID, "M", "white", 4)},
	})
	require.NoError(t, err)

	change, err := f.orders.ChangeStatus(f.ctx, order.ID, models.OrderStatusProcessing)
	require.NoError(t, err)
	require.Len(t, change.Order.Items, 1)
	assert.Equal(t, 4, change.Order.Items[0].Quantity)
	assert.True(t, decimal.NewFromInt(20000).Equal(change.Order.TotalAmount))
}

func TestUpdateDeliveryAssignsAndClearsRider(t *testing.T) {
	f := newFixture(t)
	shirt := f.createProduct(t, "Linen Shirt", variation("LS-M-W", "M", "white", 5000, 10))
	customer := f.createCustomer(t, "Aye Aye")
	order := f.placeOrder(t, customer.ID, item(shirt.ID, "M", "white", 1))

	rider, err := f.riders.SaveRider(f.ctx, uuid.Nil, "Zaw Min", "09-777-0000", "")
	require.NoError(t, err)
	assert.Equal(t, models.RiderStatusAvailable, rider.Status)

	updated, err := f.orders.UpdateDelivery(f.ctx, order.ID, services.DeliveryUpdate{
		PaymentStatus:  strPtr("paid"),
		DeliveryStatus: strPtr("out_for_delivery"),
		RiderID:        strPtr(rider.ID.String()),
	})
	require.NoError(t, err)
	assert.Equal(t, "paid", updated.PaymentStatus)
	assert.Equal(t, models.PaymentMethodCOD, updated.PaymentMethod)
	assert.Equal(t, "out_for_delivery", updated.DeliveryStatus)
	require.NotNil(t, updated.AssignedRiderID)
	assert.Equal(t, rider.ID, *updated.AssignedRiderID)
	assert.Equal(t, "Zaw Min", updated.AssignedRiderName)

	cleared, err := f.orders.UpdateDelivery(f.ctx, order.ID, services.DeliveryUpdate{RiderID: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, cleared.AssignedRiderID)
	assert.Empty(t, cleared.AssignedRiderName)
	assert.Equal(t, "paid", cleared.PaymentStatus)
}

func TestUpdateDeliveryValidation(t *testing.T) {
	f := newFixture(t)
	shirt := f.createProduct(t, "Linen Shirt", variation("LS-M-W", "M", "white", 5000, 10))
	customer := f.createCustomer(t, "Aye Aye")
	order := f.placeOrder(t, customer.ID, item(shirt.ID, "M", "white", 1))

	cases := map[string]services.DeliveryUpdate{
		"nothing to update": {},
		"blank fields":      {PaymentStatus: strPtr("  ")},
		"unknown rider":     {RiderID: strPtr(uuid.NewString())},
		"malformed rider":   {RiderID: strPtr("rider-7")},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.orders.UpdateDelivery(f.ctx, order.ID, in)
			var validation *services.ValidationError
			assert.ErrorAs(t, err, &validation)
		})
	}
}

func TestOrderNotes(t *testing.T) {
	f := newFixture(t)
	shirt := f.createProduct(t, "Linen Shirt", variation("LS-M-W", "M", "white", 5000, 10))
	customer := f.createCustomer(t, "Aye Aye")
	order := f.placeOrder(t, customer.ID, item(shirt.ID, "M", "white", 1))

	internal, err := f.orders.AddNote(f.ctx, order.ID, services.NoteKindInternal, "gift wrap")
	require.NoError(t, err)
	delivery, err := f.orders.AddNote(f.ctx, order.ID, services.NoteKindDelivery, "leave at the gate")
	require.NoError(t, err)
	assert.False(t, internal.Timestamp.IsZero())

	stored, err := f.orders.GetOrder(f.ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Notes, 1)
	require.Len(t, stored.DeliveryNotes, 1)
	assert.Equal(t, "gift wrap", stored.Notes[0].Text)
	assert.Equal(t, "leave at the gate", stored.DeliveryNotes[0].Text)

	require.NoError(t, f.orders.RemoveNote(f.ctx, order.ID, services.NoteKindDelivery, delivery.ID))
	assert.ErrorIs(t, f.orders.RemoveNote(f.ctx, order.ID, services.NoteKindDelivery, delivery.ID), services.ErrNotFound)

	stored, err = f.orders.GetOrder(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Notes, 1)
	assert.Empty(t, stored.DeliveryNotes)

	_, err = f.orders.AddNote(f.ctx, order.ID, services.NoteKindInternal, "   ")
	var validation *services.ValidationError
	assert.ErrorAs(t, err, &validation)

	_, err = f.orders.AddNote(f.ctx, order.ID, services.NoteKind("comments"), "hello")
	assert.ErrorAs(t, err, &validation)
}

func TestDeleteOrderKeepsStockAndAggregates(t *testing.T) {
	f := newFixture(t)
	shirt := f.createProduct(t, "Linen Shirt", variation("LS-M-W", "M", "white", 5000, 10))
	customer := f.createCustomer(t, "Aye Aye")
	order := f.placeOrder(t, customer.ID, item(shirt.ID, "M", "white", 3))

	require.NoError(t, f.orders.DeleteOrder(f.ctx, order.ID))

	_, err := f.orders.GetOrder(f.ctx, order.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.Equal(t, 7, f.stock(t, shirt.ID, "M", "white"))
	assert.Equal(t, 1, f.customer(t, customer.ID).TotalOrders)
	assert.Contains(t, f.events.types(), services.EventOrderDeleted)

	assert.ErrorIs(t, f.orders.DeleteOrder(f.ctx, order.ID), services.ErrNotFound)
}

func TestListOrdersFilters(t *testing.T) {
	f := newFixture(t)
	shirt := f.createProduct(t, "Linen Shirt", variation("LS-M-W", "M", "white", 5000, 50))
	aye := f.createCustomer(t, "Aye Aye")
	ko := f.createCustomer(t, "Ko Ko")

	first := f.placeOrder(t, aye.ID, item(shirt.ID, "M", "white", 1))
	f.placeOrder(t, aye.ID, item(shirt.ID, "M", "white", 1))
	f.placeOrder(t, ko.ID, item(shirt.ID, "M", "white", 1))

	_, err := f.orders.ChangeStatus(f.ctx, first.ID, models.OrderStatusCanceled)
	require.NoError(t, err)

	orders, total, err := f.orders.ListOrders(f.ctx, services.OrderFilter{CustomerID: &aye.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, orders, 2)

	orders, total, err = f.orders.ListOrders(f.ctx, services.OrderFilter{Status: models.OrderStatusCanceled})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, first.ID, orders[0].ID)

	_, total, err = f.orders.ListOrders(f.ctx, services.OrderFilter{Search: "ko ko"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	orders, total, err = f.orders.ListOrders(f.ctx, services.OrderFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, orders, 1)

	_, _, err = f.orders.ListOrders(f.ctx, services.OrderFilter{Status: "lost"})
	var validation *services.ValidationError
	assert.ErrorAs(t, err, &validation)
}
