package models

// Category groups products. Products reference it by id through category_id.
type Category struct {
	BaseModel
	Name        string `json:"name"`
	Slug        string `gorm:"uniqueIndex" json:"slug"`
	Description string `json:"description"`
	Image       string `json:"image"`
}
