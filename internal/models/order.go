package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCanceled   = "canceled"
)

const (
	PaymentStatusUnpaid      = "unpaid"
	PaymentMethodCOD         = "COD"
	DeliveryStatusNotShipped = "not_yet_shipped"
)

// Order owns snapshots of the customer and items taken when it was settled.
type Order struct {
	BaseModel
	CustomerID        uuid.UUID       `gorm:"type:uuid;index" json:"customer_id"`
	CustomerName      string          `json:"customer_name"`
	CustomerPhone     string          `json:"customer_phone"`
	ShippingAddress   *Address        `gorm:"type:jsonb;serializer:json" json:"shipping_address"`
	Items             []OrderItem     `gorm:"type:jsonb;serializer:json" json:"items"`
	TotalAmount       decimal.Decimal `gorm:"type:numeric(14,2)" json:"total_amount"`
	Status            string          `gorm:"index" json:"status"`
	PaymentStatus     string          `json:"payment_status"`
	PaymentMethod     string          `json:"payment_method"`
	DeliveryStatus    string          `json:"delivery_status"`
	AssignedRiderID   *uuid.UUID      `gorm:"type:uuid" json:"assigned_rider_id"`
	AssignedRiderName string          `json:"assigned_rider_name"`
	Notes             []Note          `gorm:"type:jsonb;serializer:json" json:"notes"`
	DeliveryNotes     []Note          `gorm:"type:jsonb;serializer:json" json:"delivery_notes"`
	Version           int64           `gorm:"not null;default:0" json:"version"`
}

// OrderItem is a priced line copied from the product at settlement time.
type OrderItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// LineTotal is price times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderTotal sums the line totals of items.
func OrderTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// IsValidOrderStatus reports whether status is one of the known order states.
func IsValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCanceled:
		return true
	}
	return false
}
