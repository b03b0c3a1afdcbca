package usecase

import (
	"context"

	"dealradar/internal/domain/entity"

	"github.com/google/uuid"
)

// CatalogUsecase exposes read-only views over the tracked deal state for
// the HTTP API.
type CatalogUsecase interface {
	// ListStores returns every store discovered in a tracked locality.
	ListStores(ctx context.Context, locality string) ([]*entity.Store, error)

	// ListStoreDeals returns a store's currently available listings.
	ListStoreDeals(ctx context.Context, storeID uuid.UUID) ([]*entity.Product, error)

	// PriceHistory returns a product's recorded price points, newest first.
	// A non-positive limit applies the default page size.
	PriceHistory(ctx context.Context, productID uuid.UUID, limit int) ([]*entity.PricePoint, error)
}
