// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"

	"dealradar/internal/domain/entity"

	"github.com/google/uuid"
)

// PriceHistoryRepository defines the interface for the append-only price log.
type PriceHistoryRepository interface {
	// AppendPricePoint records one immutable price/quantity observation.
	AppendPricePoint(ctx context.Context, point *entity.PricePoint) error

	// ListPricePointsByProduct retrieves a product's observations, newest first.
	ListPricePointsByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]*entity.PricePoint, error)
}
