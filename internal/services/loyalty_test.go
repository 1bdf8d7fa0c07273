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

func TestCompletingOrderPostsPointsOnce(t *testing.T) {
	f := newFixture(t)
	coat := f.createProduct(t, "Wool Coat", variation("WC-L-G", "L", "grey", 25000, 5))
	customer := f.createCustomer(t, "Aye Aye")

	_, err := f.loyalty.AdjustPoints(f.ctx, services.AdjustPointsInput{
		CustomerID: customer.ID, Adjustment: 7, Reason: "welcome bonus", Actor: "ops",
	})
	require.NoError(t, err)

	order := f.placeOrder(t, customer.ID, item(coat.ID, "L", "grey", 2))
	require.True(t, decimal.NewFromInt(50000).Equal(order.TotalAmount))

	change, err := f.orders.ChangeStatus(f.ctx, order.ID, models.OrderStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, change.PreviousStatus)
	require.NotNil(t, change.PointsPosted)

	entry := change.PointsPosted
	assert.Equal(t, 50, entry.Points)
	assert.Equal(t, 57, entry.BalanceAfter)
	assert.Equal(t, models.LoyaltyTypeEarn, entry.Type)
	assert.Equal(t, models.ReasonCodeOrderCompleted, entry.ReasonCode)
	require.NotNil(t, entry.OrderID)
	assert.Equal(t, order.ID, *entry.OrderID)
	assert.Equal(t, 57, f.customer(t, customer.ID).LoyaltyPoints)

	again, err := f.orders.ChangeStatus(f.ctx, order.ID, models.OrderStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, again.PreviousStatus)
	assert.Nil(t, again.PointsPosted)
	assert.Equal(t, 57, f.customer(t, customer.ID).LoyaltyPoints)

	ledger, err := f.loyalty.ListTransactions(f.ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, ledger, 2)
	assert.Equal(t, models.ReasonCodeOrderCompleted, ledger[0].ReasonCode, "newest first")
	assert.Equal(t, models.ReasonCodeManualAdjustment, ledger[1].ReasonCode)

	assert.Contains(t, f.events.types(), services.EventPointsPosted)
}

func TestCompletionUsesConfiguredRate(t *testing.T) {
	f := newFixture(t)
	coat := f.createProduct(t, "Wool Coat", variation("WC-L-G", "L", "grey", 25000, 5))
	customer := f.createCustomer(t, "Aye Aye")

	_, err := f.settings.UpdatePointsPerCurrency(f.ctx, decimal.NewFromInt(500))
	require.NoError(t, err)

	order := f.placeOrder(t, customer.ID, item(coat.ID, "L", "grey", 1))
	change, err := f.orders.ChangeStatus(f.ctx, order.ID, models.OrderStatusCompleted)
	require.NoError(t, err)
	require.NotNil(t, change.PointsPosted)
	assert.Equal(t, 50, change.PointsPosted.Points)
}

func TestSmallOrderPostsNothing(t *testing.T) {
	f := newFixture(t)
	sock := f.createProduct(t, "Socks", variation("SO-OS-B", "OS", "black", 900, 5))
	customer := f.createCustomer(t, "Aye Aye")

	order := f.placeOrder(t, customer.ID, item(sock.ID, "OS", "black", 1))
	change, err := f.orders.ChangeStatus(f.ctx, order.ID, models.OrderStatusCompleted)
	require.NoError(t, err)
	assert.Nil(t, change.PointsPosted)

	ledger, err := f.loyalty.ListTransactions(f.ctx, customer.ID)
	require.NoError(t, err)
	assert.Empty(t, ledger)
}

func TestNonPositiveRateIsRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.settings.UpdatePointsPerCurrency(f.ctx, decimal.Zero)
	var validation *services.ValidationError
	require.ErrorAs(t, err, &validation)

	settings, err := f.settings.Get(f.ctx)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1000).Equal(settings.PointsPerCurrency))
}

func TestCompletionForDeletedCustomerIsSkipped(t *testing.T) {
	f := newFixture(t)
	coat := f.createProduct(t, "Wool Coat", variation("WC-L-G", "L", "grey", 25000, 5))
	customer := f.createCustomer(t, "Aye Aye")
	order := f.placeOrder(t, customer.ID, item(coat.ID, "L", "grey", 1))

	require.NoError(t, f.customers.DeleteCustomer(f.ctx, customer.ID))

	change, err := f.orders.ChangeStatus(f.ctx, order.ID, models.OrderStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, change.Order.Status)
	assert.Nil(t, change.PointsPosted)
}

func TestAdjustPointsRejectsInvalidInput(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer(t, "Aye Aye")

	cases := []services.AdjustPointsInput{
		{CustomerID: customer.ID, Adjustment: 0, Reason: "nothing"},
		{CustomerID: customer.ID, Adjustment: 10, Reason: ""},
		{CustomerID: customer.ID, Adjustment: -10, Reason: "   "},
	}
	for _, in := range cases {
		_, err := f.loyalty.AdjustPoints(f.ctx, in)
		assert.ErrorIs(t, err, services.ErrInvalidAdjustment)
	}

	assert.Zero(t, f.customer(t, customer.ID).LoyaltyPoints)
	ledger, err := f.loyalty.ListTransactions(f.ctx, customer.ID)
	require.NoError(t, err)
	assert.Empty(t, ledger)
}

func TestAdjustPointsRedeemMayGoNegative(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer(t, "Aye Aye")

	entry, err := f.loyalty.AdjustPoints(f.ctx, services.AdjustPointsInput{
		CustomerID: customer.ID, Adjustment: -30, Reason: "gift voucher", Actor: "Daw Mya",
	})
	require.NoError(t, err)

	assert.Equal(t, models.LoyaltyTypeRedeem, entry.Type)
	assert.Equal(t, models.ReasonCodeManualAdjustment, entry.ReasonCode)
	assert.Equal(t, -30, entry.Points)
	assert.Equal(t, -30, entry.BalanceAfter)
	assert.Equal(t, "Daw Mya", entry.CreatedBy)
	assert.Nil(t, entry.OrderID)
	assert.Equal(t, -30, f.customer(t, customer.ID).LoyaltyPoints)
}

func TestAdjustPointsUnknownCustomer(t *testing.T) {
	f := newFixture(t)

	_, err := f.loyalty.AdjustPoints(f.ctx, services.AdjustPointsInput{
		CustomerID: uuid.New(), Adjustment: 5, Reason: "test",
	})
	assert.ErrorIs(t, err, services.ErrNotFound)
}
