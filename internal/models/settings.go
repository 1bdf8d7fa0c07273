package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettingsLoyaltyID is the key of the singleton loyalty settings row.
const SettingsLoyaltyID = "loyalty"

// Settings holds the loyalty configuration. There is only one row.
type Settings struct {
	ID                string          `gorm:"primaryKey" json:"id"`
	PointsPerCurrency decimal.Decimal `gorm:"type:numeric(14,2)" json:"points_per_currency"`
	UpdatedAt         time.Time       `json:"updated_at"`
}
