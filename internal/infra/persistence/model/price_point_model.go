package model

import (
	"time"

	"github.com/google/uuid"
)

// PricePointModel is the GORM-specific struct for the append-only
// 'price_history' table. Rows are never updated or deleted.
type PricePointModel struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	ProductID         uuid.UUID `gorm:"type:uuid;not null;index"`
	Price             float64   `gorm:"not null"`
	QuantityAvailable int       `gorm:"not null;default:0"`
	RecordedAt        time.Time `gorm:"not null;index"`
}

// TableName explicitly sets the table name for GORM.
func (PricePointModel) TableName() string {
	return "price_history"
}
