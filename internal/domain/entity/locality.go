// Package entity contains the core business objects of the project.
package entity

// Locality is a tracked geographic search area with fixed coordinates.
// Localities are owned by configuration and immutable for the process lifetime.
type Locality struct {
	Key       string  `json:"key"`       // Stable key used for matching subscriber preferences (e.g., "calgary").
	Name      string  `json:"name"`      // Human-readable display name (e.g., "Calgary").
	Latitude  float64 `json:"latitude"`  // Search center latitude.
	Longitude float64 `json:"longitude"` // Search center longitude.
}
