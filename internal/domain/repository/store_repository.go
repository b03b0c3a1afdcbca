// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"

	"dealradar/internal/domain/entity"
	"dealradar/internal/errors"
)

// Domain-specific errors for store persistence.
var (
	// ErrStoreNotFound is returned when a store is not found.
	ErrStoreNotFound = errors.New("store not found")
)

// StoreRepository defines the interface for store-related database operations.
type StoreRepository interface {
	// UpsertStore creates the store on first sighting or overwrites its mutable
	// fields (name, address, locality, coordinates) on every subsequent one.
	// The entity's ID and timestamps are populated from the stored row.
	UpsertStore(ctx context.Context, store *entity.Store) error

	// FindStoreByExternalID retrieves a store by the source system's identifier.
	FindStoreByExternalID(ctx context.Context, externalID string) (*entity.Store, error)

	// ListStoresByLocality retrieves all stores discovered in a tracked locality.
	ListStoresByLocality(ctx context.Context, locality string) ([]*entity.Store, error)
}
