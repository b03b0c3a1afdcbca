// Package impl contains the concrete implementations of the use case layer.
package impl

import (
	"context"
	"log/slog"
	"time"

	"dealradar/internal/domain/entity"
	"dealradar/internal/domain/repository"
	"dealradar/internal/domain/service"
	"dealradar/internal/usecase"

	"github.com/pkg/errors"
)

type reconcileService struct {
	txManager repository.TransactionManager
	logger    *slog.Logger
	now       func() time.Time
}

// NewReconcileService creates a new reconcile service instance.
func NewReconcileService(txManager repository.TransactionManager, logger *slog.Logger) usecase.ReconcileUsecase {
	return &reconcileService{
		txManager: txManager,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ReconcileSnapshot applies one store snapshot inside a single transaction.
// Listings are applied in snapshot order so the last observation of a
// conflicting field wins within the cycle.
func (s *reconcileService) ReconcileSnapshot(ctx context.Context, snapshot *service.StoreSnapshot) (*usecase.ReconcileResult, error) {
	if snapshot == nil || snapshot.Store == nil {
		return nil, errors.New("nil store snapshot")
	}

	result := &usecase.ReconcileResult{}

	err := s.txManager.Execute(ctx, func(repos repository.RepositoryFactory) error {
		storeRepo := repos.NewStoreRepository()
		productRepo := repos.NewProductRepository()
		historyRepo := repos.NewPriceHistoryRepository()

		store := snapshot.Store
		if err := storeRepo.UpsertStore(ctx, store); err != nil {
			return errors.Wrapf(err, "upsert store %s", store.ExternalID)
		}

		seen := make([]string, 0, len(snapshot.Items))
		for _, item := range snapshot.Items {
			if item.ExternalID == "" {
				continue
			}
			seen = append(seen, item.ExternalID)

			// The savepoint keeps a failed item from aborting the rest of
			// the transaction's statements on PostgreSQL.
			var diff *usecase.DiffEntry
			err := repos.Atomic(ctx, func() error {
				var applyErr error
				diff, applyErr = s.applyObservation(ctx, productRepo, historyRepo, store, item)

				return applyErr
			})
			if err != nil {
				// One bad item must not sink the rest of the snapshot.
				s.logger.ErrorContext(ctx, "failed to reconcile item",
					slog.String("store", store.ExternalID),
					slog.String("item", item.ExternalID),
					slog.Any("error", err))

				continue
			}
			if diff != nil {
				result.Diffs = append(result.Diffs, diff)
			}
		}

		stale, err := productRepo.MarkStaleProducts(ctx, store.ID, seen)
		if err != nil {
			return errors.Wrapf(err, "mark stale products for store %s", store.ExternalID)
		}
		result.StaleMarked = stale

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// applyObservation creates or refreshes one product row and returns the diff
// entry the observation produced, if any.
func (s *reconcileService) applyObservation(
	ctx context.Context,
	productRepo repository.ProductRepository,
	historyRepo repository.PriceHistoryRepository,
	store *entity.Store,
	item *service.ProductObservation,
) (*usecase.DiffEntry, error) {
	now := s.now()

	existing, err := productRepo.FindProductByStoreAndExternalID(ctx, store.ID, item.ExternalID)
	if err != nil {
		if !errors.Is(err, repository.ErrProductNotFound) {
			return nil, err
		}

		return s.createProduct(ctx, productRepo, historyRepo, store, item, now)
	}

	priceChanged := existing.DiscountPrice != item.DiscountPrice
	quantityChanged := existing.QuantityAvailable != item.QuantityAvailable

	oldPrice := existing.DiscountPrice
	oldQuantity := existing.QuantityAvailable

	// Mutable fields always track the latest observation; name, category and
	// expiry drift updates silently without a diff or history point.
	existing.Name = item.Name
	existing.Description = item.Description
	existing.Category = item.Category
	existing.OriginalPrice = item.OriginalPrice
	existing.DiscountPrice = item.DiscountPrice
	existing.DiscountPercent = item.DiscountPercent
	existing.QuantityAvailable = item.QuantityAvailable
	existing.ExpiryDate = item.ExpiryDate
	existing.ImageURL = item.ImageURL
	existing.LastSeen = now

	if err := productRepo.UpdateProduct(ctx, existing); err != nil {
		return nil, err
	}

	if !priceChanged && !quantityChanged {
		return nil, nil
	}

	if err := historyRepo.AppendPricePoint(ctx, &entity.PricePoint{
		ProductID:         existing.ID,
		Price:             item.DiscountPrice,
		QuantityAvailable: item.QuantityAvailable,
		RecordedAt:        now,
	}); err != nil {
		return nil, err
	}

	return &usecase.DiffEntry{
		Kind:        usecase.DiffChanged,
		Product:     existing,
		Store:       store,
		OldPrice:    oldPrice,
		NewPrice:    item.DiscountPrice,
		OldQuantity: oldQuantity,
		NewQuantity: item.QuantityAvailable,
	}, nil
}

func (s *reconcileService) createProduct(
	ctx context.Context,
	productRepo repository.ProductRepository,
	historyRepo repository.PriceHistoryRepository,
	store *entity.Store,
	item *service.ProductObservation,
	now time.Time,
) (*usecase.DiffEntry, error) {
	product := &entity.Product{
		StoreID:           store.ID,
		ExternalID:        item.ExternalID,
		Name:              item.Name,
		Description:       item.Description,
		Category:          item.Category,
		OriginalPrice:     item.OriginalPrice,
		DiscountPrice:     item.DiscountPrice,
		DiscountPercent:   item.DiscountPercent,
		QuantityAvailable: item.QuantityAvailable,
		ExpiryDate:        item.ExpiryDate,
		ImageURL:          item.ImageURL,
		FirstSeen:         now,
		LastSeen:          now,
	}

	if err := productRepo.CreateProduct(ctx, product); err != nil {
		return nil, err
	}

	if err := historyRepo.AppendPricePoint(ctx, &entity.PricePoint{
		ProductID:         product.ID,
		Price:             product.DiscountPrice,
		QuantityAvailable: product.QuantityAvailable,
		RecordedAt:        now,
	}); err != nil {
		return nil, err
	}

	return &usecase.DiffEntry{
		Kind:        usecase.DiffNew,
		Product:     product,
		Store:       store,
		NewPrice:    product.DiscountPrice,
		NewQuantity: product.QuantityAvailable,
	}, nil
}
