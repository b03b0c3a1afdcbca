// Package service defines the interfaces for external collaborators
// (the deals source API, notification transports, broadcast, events).
package service

import (
	"context"
	"time"

	"dealradar/internal/domain/entity"
	"dealradar/internal/errors"
)

// Source failure taxonomy. Callers classify fetch errors with errors.Is;
// all three are retryable on the next polling cycle, never intra-cycle.
var (
	// ErrSourceUnavailable indicates a network or connect failure.
	ErrSourceUnavailable = errors.New("deal source unavailable")
	// ErrSourceRejected indicates the source answered with a non-2xx status.
	ErrSourceRejected = errors.New("deal source rejected request")
	// ErrSourceMalformed indicates the source payload could not be decoded.
	ErrSourceMalformed = errors.New("deal source returned malformed payload")
)

// ProductObservation is one normalized item listing from a store snapshot.
// It carries no persistence identity; the reconciliation engine resolves it
// against the stored product by (store, external id).
type ProductObservation struct {
	ExternalID        string     `json:"external_id"`
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	Category          string     `json:"category"`
	OriginalPrice     float64    `json:"original_price"`
	DiscountPrice     float64    `json:"discount_price"`
	DiscountPercent   *int       `json:"discount_percent"`
	QuantityAvailable int        `json:"quantity_available"`
	ExpiryDate        *time.Time `json:"expiry_date"`
	ImageURL          string     `json:"image_url"`
}

// StoreSnapshot is the normalized result of one store fetch: the store's
// current metadata plus every item currently listed there.
type StoreSnapshot struct {
	Store *entity.Store         `json:"store"` // ExternalID and mutable fields set; ID unset until upsert.
	Items []*ProductObservation `json:"items"`
}

// DealSource wraps the third-party deals API.
type DealSource interface {
	// FetchStoresNear queries the source for stores within the configured
	// radius of the locality's coordinates, with item listings inlined.
	FetchStoresNear(ctx context.Context, locality entity.Locality) ([]*StoreSnapshot, error)

	// FetchItemsForStore queries the current item listings of one store, for
	// the case where listings were not inlined in the store feed.
	FetchItemsForStore(ctx context.Context, storeExternalID string) ([]*ProductObservation, error)
}
