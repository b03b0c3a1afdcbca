package usecase

import (
	"context"

	"dealradar/internal/domain/service"
)

// ReconcileResult reports what reconciling one store snapshot changed.
type ReconcileResult struct {
	Diffs       []*DiffEntry
	StaleMarked int64
}

// ReconcileUsecase applies one store snapshot to the persistent state and
// reports the cycle-local diff.
type ReconcileUsecase interface {
	// ReconcileSnapshot upserts the store, creates or updates every observed
	// product, appends price history for new and moved listings and
	// soft-deletes listings absent from the snapshot. Per-item persistence
	// failures are logged and skipped; the snapshot's remaining items are
	// still applied.
	ReconcileSnapshot(ctx context.Context, snapshot *service.StoreSnapshot) (*ReconcileResult, error)
}
