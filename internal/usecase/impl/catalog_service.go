package impl

import (
	"context"
	"log/slog"

	"dealradar/internal/domain/entity"
	"dealradar/internal/domain/repository"
	"dealradar/internal/usecase"

	"github.com/google/uuid"
)

const (
	defaultHistoryLimit = 30
	maxHistoryLimit     = 365
)

type catalogService struct {
	storeRepo   repository.StoreRepository
	productRepo repository.ProductRepository
	historyRepo repository.PriceHistoryRepository
	logger      *slog.Logger
}

// NewCatalogService assembles the read-only catalog views served by the
// HTTP API.
func NewCatalogService(
	storeRepo repository.StoreRepository,
	productRepo repository.ProductRepository,
	historyRepo repository.PriceHistoryRepository,
	logger *slog.Logger,
) usecase.CatalogUsecase {
	return &catalogService{
		storeRepo:   storeRepo,
		productRepo: productRepo,
		historyRepo: historyRepo,
		logger:      logger,
	}
}

func (svc *catalogService) ListStores(ctx context.Context, locality string) ([]*entity.Store, error) {
	return svc.storeRepo.ListStoresByLocality(ctx, locality)
}

func (svc *catalogService) ListStoreDeals(ctx context.Context, storeID uuid.UUID) ([]*entity.Product, error) {
	return svc.productRepo.ListAvailableProductsByStore(ctx, storeID)
}

func (svc *catalogService) PriceHistory(ctx context.Context, productID uuid.UUID, limit int) ([]*entity.PricePoint, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	return svc.historyRepo.ListPricePointsByProduct(ctx, productID, limit)
}
