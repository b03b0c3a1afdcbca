package model

import (
	"time"

	"github.com/google/uuid"
)

// SubscriberPreferenceModel is the GORM-specific struct for the
// 'subscriber_preferences' table. The table is owned by the user management
// system; this service only reads it.
type SubscriberPreferenceModel struct {
	ID                 uuid.UUID   `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	UserID             uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex"`
	Email              string      `gorm:"not null"`
	DisplayName        string
	Locality           string      `gorm:"index;not null"`
	SelectedStoreIDs   []uuid.UUID `gorm:"serializer:json"`
	MinDiscountPercent int         `gorm:"not null;default:0"`
	FavoriteCategories []string    `gorm:"serializer:json"`
	EmailNotifications bool        `gorm:"not null;default:true"`
	NotifyNewDeals     bool        `gorm:"not null;default:true"`
	NotifyPriceDrops   bool        `gorm:"not null;default:false"`
	NotificationStart  string      `gorm:"not null;default:'00:00'"` // "HH:MM"
	NotificationEnd    string      `gorm:"not null;default:'23:59'"` // "HH:MM"
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName explicitly sets the table name for GORM.
func (SubscriberPreferenceModel) TableName() string {
	return "subscriber_preferences"
}
