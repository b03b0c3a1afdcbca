// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"

	"dealradar/internal/domain/entity"
)

// PreferenceRepository is the read-only view of subscriber preferences the
// dispatcher consumes. Preference rows are owned and validated by the user
// management system, which is outside this service.
type PreferenceRepository interface {
	// ListNewDealSubscribers retrieves every subscriber with email
	// notifications and new-deal alerts enabled.
	ListNewDealSubscribers(ctx context.Context) ([]*entity.SubscriberPreference, error)

	// ListPriceDropSubscribers retrieves every subscriber with email
	// notifications and price-drop alerts enabled.
	ListPriceDropSubscribers(ctx context.Context) ([]*entity.SubscriberPreference, error)
}
