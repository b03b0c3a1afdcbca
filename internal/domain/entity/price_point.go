// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// PricePoint is an immutable, append-only price observation for a product.
// A point is recorded when a product is first seen and whenever its price or
// available quantity changes; it is never mutated or deleted.
type PricePoint struct {
	ID                uuid.UUID `json:"id"`                 // The Global Unique Identifier (GUID) for the observation.
	ProductID         uuid.UUID `json:"product_id"`         // The ID of the observed product.
	Price             float64   `json:"price"`              // Discount price at observation time.
	QuantityAvailable int       `json:"quantity_available"` // Stock level at observation time.
	RecordedAt        time.Time `json:"recorded_at"`        // When this observation was made.
}
