package services

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/retailadmin/internal/models"
)

// applyNewOrder counts a freshly settled order against the customer.
func applyNewOrder(customer *models.Customer, total decimal.Decimal, now time.Time) {
	customer.TotalOrders++
	customer.TotalSpent = customer.TotalSpent.Add(total)
	customer.LastOrderDate = &now
}

// applyOrderEdit moves total_spent by the difference between the edited and
// the previous order total. total_orders is left alone.
func applyOrderEdit(customer *models.Customer, oldTotal, newTotal decimal.Decimal, now time.Time) {
	customer.TotalSpent = customer.TotalSpent.Add(newTotal.Sub(oldTotal))
	customer.LastOrderDate = &now
}
