// Package usecase defines the application's use case interfaces.
package usecase

import (
	"context"
	"time"

	"dealradar/internal/domain/entity"
)

// DiffKind classifies a cycle-local listing change.
type DiffKind string

const (
	// DiffNew marks a listing observed for the first time at its store.
	DiffNew DiffKind = "new"
	// DiffChanged marks a listing whose price or quantity moved.
	DiffChanged DiffKind = "changed"
)

// DiffEntry is a per-cycle, non-persisted record of a new or changed listing.
// Old and new values are only meaningful for changed entries.
type DiffEntry struct {
	Kind        DiffKind        `json:"kind"`
	Product     *entity.Product `json:"product"`
	Store       *entity.Store   `json:"store"`
	OldPrice    float64         `json:"old_price"`
	NewPrice    float64         `json:"new_price"`
	OldQuantity int             `json:"old_quantity"`
	NewQuantity int             `json:"new_quantity"`
}

// IsPriceDrop reports whether the entry is a changed listing whose price fell.
func (d *DiffEntry) IsPriceDrop() bool {
	return d.Kind == DiffChanged && d.NewPrice < d.OldPrice
}

// CycleResult aggregates what one ingestion cycle did.
type CycleResult struct {
	StartedAt        time.Time `json:"started_at"`
	CompletedAt      time.Time `json:"completed_at"`
	Localities       []string  `json:"localities"`
	FailedLocalities int       `json:"failed_localities"`
	StoresSeen       int       `json:"stores_seen"`
	ProductsSeen     int       `json:"products_seen"`
	NewDeals         int       `json:"new_deals"`
	ChangedDeals     int       `json:"changed_deals"`
	StaleMarked      int       `json:"stale_marked"`
	NotifiedUsers    int       `json:"notified_users"`
}

// IngestUsecase drives full ingestion cycles: fetch every tracked locality,
// reconcile every returned store, dispatch notifications and broadcast.
type IngestUsecase interface {
	// RunCycle executes one full ingestion cycle. Per-locality and per-store
	// failures are logged and absorbed; an error is returned only when the
	// cycle cannot start at all.
	RunCycle(ctx context.Context) (*CycleResult, error)
}
