// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Store represents a physical partner location that publishes discounted items.
// Identity is the source system's external ID; the internal UUID is a surrogate
// key used for joins. Stores are created on first sighting, refreshed on every
// subsequent sighting and never deleted.
type Store struct {
	ID         uuid.UUID `json:"id"`          // The Global Unique Identifier (GUID) for the store.
	ExternalID string    `json:"external_id"` // The source system's store identifier (unique).
	Name       string    `json:"name"`        // Store display name (e.g., "No Frills Northland Village").
	Address    string    `json:"address"`     // Full street address.
	Locality   string    `json:"locality"`    // Key of the tracked locality this store was discovered in.
	Latitude   float64   `json:"latitude"`    // GPS coordinate.
	Longitude  float64   `json:"longitude"`   // GPS coordinate.
	CreatedAt  time.Time `json:"created_at"`  // First time the store was discovered.
	UpdatedAt  time.Time `json:"updated_at"`  // Last time the store metadata was refreshed.
}
