package postgres

import (
	"context"

	"dealradar/internal/domain/entity"
	"dealradar/internal/domain/repository"
	"dealradar/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// priceHistoryRepository implements the repository.PriceHistoryRepository interface.
type priceHistoryRepository struct {
	db *gorm.DB
}

// NewPriceHistoryRepository is the constructor for priceHistoryRepository.
func NewPriceHistoryRepository(db *gorm.DB) repository.PriceHistoryRepository {
	return &priceHistoryRepository{
		db: db,
	}
}

// AppendPricePoint records one immutable price/quantity observation.
func (repo *priceHistoryRepository) AppendPricePoint(ctx context.Context, point *entity.PricePoint) error {
	pointM := fromPricePointDomain(point)

	if err := repo.db.WithContext(ctx).Create(pointM).Error; err != nil {
		return errors.Wrap(err, "failed to append price point")
	}

	point.ID = pointM.ID

	return nil
}

// ListPricePointsByProduct retrieves a product's observations, newest first.
// A non-positive limit returns the full history.
func (repo *priceHistoryRepository) ListPricePointsByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]*entity.PricePoint, error) {
	var pointModels []*model.PricePointModel

	query := repo.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("recorded_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&pointModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list price points by product")
	}

	points := make([]*entity.PricePoint, 0, len(pointModels))
	for _, pointM := range pointModels {
		points = append(points, toPricePointDomain(pointM))
	}

	return points, nil
}

// fromPricePointDomain converts a domain entity into its GORM model.
func fromPricePointDomain(point *entity.PricePoint) *model.PricePointModel {
	return &model.PricePointModel{
		ID:                point.ID,
		ProductID:         point.ProductID,
		Price:             point.Price,
		QuantityAvailable: point.QuantityAvailable,
		RecordedAt:        point.RecordedAt,
	}
}

// toPricePointDomain converts a GORM model into its domain entity.
func toPricePointDomain(pointM *model.PricePointModel) *entity.PricePoint {
	return &entity.PricePoint{
		ID:                pointM.ID,
		ProductID:         pointM.ProductID,
		Price:             pointM.Price,
		QuantityAvailable: pointM.QuantityAvailable,
		RecordedAt:        pointM.RecordedAt,
	}
}
