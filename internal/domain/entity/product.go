// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a discounted item observed at a specific store.
// (StoreID, ExternalID) uniquely identifies a product for its whole observed
// lifetime: price and quantity mutate in place, the row is never replaced.
// A product that disappears from a store snapshot is soft-deleted by forcing
// QuantityAvailable to zero, preserving its row and price history.
type Product struct {
	ID                uuid.UUID  `json:"id"`                 // The Global Unique Identifier (GUID) for the product.
	StoreID           uuid.UUID  `json:"store_id"`           // The ID of the store this product belongs to.
	ExternalID        string     `json:"external_id"`        // The source system's item identifier (unique within a store).
	Name              string     `json:"name"`               // Product name (e.g., "Assorted Bakery Items").
	Description       string     `json:"description"`        // Product description from the source.
	Category          string     `json:"category"`           // Product category (e.g., "Bakery", "Produce").
	OriginalPrice     float64    `json:"original_price"`     // Original retail price before discount.
	DiscountPrice     float64    `json:"discount_price"`     // Current discounted price.
	DiscountPercent   *int       `json:"discount_percent"`   // Derived discount percentage; nil when the original price is unknown.
	QuantityAvailable int        `json:"quantity_available"` // Units in stock; zero means gone/out of stock.
	ExpiryDate        *time.Time `json:"expiry_date"`        // When the product expires; nil when the source omits or mangles it.
	ImageURL          string     `json:"image_url"`          // URL to the product image.
	FirstSeen         time.Time  `json:"first_seen"`         // When this product was first detected.
	LastSeen          time.Time  `json:"last_seen"`          // Last time this product was observed in a snapshot.
}

// Available reports whether the product is still purchasable.
func (p *Product) Available() bool {
	return p.QuantityAvailable > 0
}
