package models

import (
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry whose variations carry their own price and stock.
// Variations are stored inline so the whole product is read and written as
// one document.
type Product struct {
	BaseModel
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	CategoryID        string          `gorm:"index" json:"category_id"`
	BasePrice         decimal.Decimal `gorm:"type:numeric(14,2)" json:"base_price"`
	BaseDiscountPrice decimal.Decimal `gorm:"type:numeric(14,2)" json:"base_discount_price"`
	Images            pq.StringArray  `gorm:"type:text[]" json:"images"`
	Tags              pq.StringArray  `gorm:"type:text[]" json:"tags"`
	Variations        []Variation     `gorm:"type:jsonb;serializer:json" json:"variations"`
	Version           int64           `gorm:"not null;default:0" json:"version"`
}

// Variation is a purchasable size/color combination of a product.
type Variation struct {
	SKU           string          `json:"sku"`
	Size          string          `json:"size"`
	Color         string          `json:"color"`
	Price         decimal.Decimal `json:"price"`
	DiscountPrice decimal.Decimal `json:"discount_price"`
	Stock         int             `json:"stock"`
	Images        []string        `json:"images"`
}

// FindVariation returns the index of the size/color variation or -1.
func (p *Product) FindVariation(size, color string) int {
	for i, v := range p.Variations {
		if v.Size == size && v.Color == color {
			return i
		}
	}
	return -1
}

// UnitPrice is the variation price, falling back to the product base price.
func (p *Product) UnitPrice(v Variation) decimal.Decimal {
	if v.Price.IsPositive() {
		return v.Price
	}
	return p.BasePrice
}

// TotalStock sums stock across all variations.
func (p *Product) TotalStock() int {
	total := 0
	for _, v := range p.Variations {
		total += v.Stock
	}
	return total
}
