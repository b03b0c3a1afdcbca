// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"

	"dealradar/internal/domain/entity"
	"dealradar/internal/errors"

	"github.com/google/uuid"
)

// Domain-specific errors for product persistence.
var (
	// ErrProductNotFound is returned when a product is not found.
	ErrProductNotFound = errors.New("product not found")

	// ErrProductAlreadyExists is returned when a create collides with a row
	// another cycle inserted first.
	ErrProductAlreadyExists = errors.New("product already exists")
)

// ProductRepository defines the interface for product-related database operations.
type ProductRepository interface {
	// CreateProduct persists a newly observed product.
	// The entity's ID is populated from the stored row.
	CreateProduct(ctx context.Context, product *entity.Product) error

	// UpdateProduct overwrites the mutable fields of an existing product row.
	UpdateProduct(ctx context.Context, product *entity.Product) error

	// FindProductByStoreAndExternalID retrieves a product by its composite
	// identity (store, external id).
	FindProductByStoreAndExternalID(ctx context.Context, storeID uuid.UUID, externalID string) (*entity.Product, error)

	// MarkStaleProducts soft-deletes every product of the store that is still
	// marked available but whose external id is absent from seenExternalIDs:
	// quantity is forced to zero and last_seen advances to now. Returns the
	// number of products marked.
	MarkStaleProducts(ctx context.Context, storeID uuid.UUID, seenExternalIDs []string) (int64, error)

	// ListAvailableProductsByStore retrieves all products of a store with
	// quantity above zero.
	ListAvailableProductsByStore(ctx context.Context, storeID uuid.UUID) ([]*entity.Product, error)
}
