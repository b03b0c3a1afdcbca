package model

import (
	"time"

	"github.com/google/uuid"
)

// ProductModel is the GORM-specific struct for the 'products' table.
// (store_id, external_id) is the product's stable identity across its whole
// observed lifetime; price and quantity mutate in place.
type ProductModel struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	StoreID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_products_store_external"`
	ExternalID        string    `gorm:"not null;uniqueIndex:idx_products_store_external"`
	Name              string    `gorm:"not null"`
	Description       string
	Category          string `gorm:"index"`
	OriginalPrice     float64
	DiscountPrice     float64 `gorm:"not null"`
	DiscountPercent   *int
	QuantityAvailable int `gorm:"not null;default:0;index:idx_products_store_quantity"`
	ExpiryDate        *time.Time
	ImageURL          string
	FirstSeen         time.Time `gorm:"not null"`
	LastSeen          time.Time `gorm:"not null"`
}

// TableName explicitly sets the table name for GORM.
func (ProductModel) TableName() string {
	return "products"
}
