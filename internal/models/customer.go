package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Customer aggregates (TotalOrders, TotalSpent, LoyaltyPoints) are written
// only by order settlement and the loyalty flows.
type Customer struct {
	BaseModel
	Name          string          `json:"name"`
	Phone         string          `gorm:"index" json:"phone"`
	Addresses     []Address       `gorm:"type:jsonb;serializer:json" json:"addresses"`
	Tags          pq.StringArray  `gorm:"type:text[]" json:"tags"`
	TotalOrders   int             `json:"total_orders"`
	TotalSpent    decimal.Decimal `gorm:"type:numeric(14,2)" json:"total_spent"`
	LoyaltyPoints int             `json:"loyalty_points"`
	LastOrderDate *time.Time      `json:"last_order_date"`
	Notes         []Note          `gorm:"type:jsonb;serializer:json" json:"notes"`
	Version       int64           `gorm:"not null;default:0" json:"version"`
}

const (
	LoyaltyTypeEarn   = "earn"
	LoyaltyTypeRedeem = "redeem"

	ReasonCodeOrderCompleted   = "ORDER_COMPLETED"
	ReasonCodeManualAdjustment = "MANUAL_ADJUSTMENT"
)

// LoyaltyTransaction is an append-only points ledger entry.
type LoyaltyTransaction struct {
	BaseModel
	CustomerID   uuid.UUID  `gorm:"type:uuid;index" json:"customer_id"`
	CustomerName string     `json:"customer_name"`
	OrderID      *uuid.UUID `gorm:"type:uuid;index" json:"order_id,omitempty"`
	Points       int        `json:"points"`
	Type         string     `json:"type"`
	Reason       string     `json:"reason"`
	ReasonCode   string     `json:"reason_code"`
	BalanceAfter int        `json:"balance_after"`
	CreatedBy    string     `json:"created_by,omitempty"`
}
