package postgres

import (
	"context"
	"time"

	"dealradar/internal/domain/entity"
	"dealradar/internal/domain/repository"
	"dealradar/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// productRepository implements the repository.ProductRepository interface.
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository is the constructor for productRepository.
func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepository{
		db: db,
	}
}

// CreateProduct persists a newly observed product.
func (repo *productRepository) CreateProduct(ctx context.Context, product *entity.Product) error {
	productM := fromProductDomain(product)

	if err := repo.db.WithContext(ctx).Create(productM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrProductAlreadyExists
		}

		return errors.Wrap(err, "failed to create product")
	}

	product.ID = productM.ID

	return nil
}

// UpdateProduct overwrites the mutable fields of an existing product row.
// first_seen is deliberately excluded so the original sighting survives.
func (repo *productRepository) UpdateProduct(ctx context.Context, product *entity.Product) error {
	updates := map[string]any{
		"name":               product.Name,
		"description":        product.Description,
		"category":           product.Category,
		"original_price":     product.OriginalPrice,
		"discount_price":     product.DiscountPrice,
		"discount_percent":   product.DiscountPercent,
		"quantity_available": product.QuantityAvailable,
		"expiry_date":        product.ExpiryDate,
		"image_url":          product.ImageURL,
		"last_seen":          product.LastSeen,
	}

	result := repo.db.WithContext(ctx).
		Model(&model.ProductModel{}).
		Where("id = ?", product.ID).
		Updates(updates)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update product")
	}

	if result.RowsAffected == 0 {
		return repository.ErrProductNotFound
	}

	return nil
}

// FindProductByStoreAndExternalID retrieves a product by its composite identity.
func (repo *productRepository) FindProductByStoreAndExternalID(ctx context.Context, storeID uuid.UUID, externalID string) (*entity.Product, error) {
	var productM model.ProductModel

	if err := repo.db.WithContext(ctx).
		Where("store_id = ? AND external_id = ?", storeID, externalID).
		First(&productM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProductNotFound
		}

		return nil, errors.Wrap(err, "failed to find product by store and external ID")
	}

	return toProductDomain(&productM), nil
}

// MarkStaleProducts zeroes the quantity of every still-available product of
// the store that was absent from the latest snapshot. last_seen advances so
// the disappearance itself is an observation.
func (repo *productRepository) MarkStaleProducts(ctx context.Context, storeID uuid.UUID, seenExternalIDs []string) (int64, error) {
	now := time.Now().UTC()

	query := repo.db.WithContext(ctx).
		Model(&model.ProductModel{}).
		Where("store_id = ? AND quantity_available > 0", storeID)

	if len(seenExternalIDs) > 0 {
		query = query.Where("external_id NOT IN ?", seenExternalIDs)
	}

	result := query.Updates(map[string]any{
		"quantity_available": 0,
		"last_seen":          now,
	})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to mark stale products")
	}

	return result.RowsAffected, nil
}

// ListAvailableProductsByStore retrieves all products of a store with quantity above zero.
func (repo *productRepository) ListAvailableProductsByStore(ctx context.Context, storeID uuid.UUID) ([]*entity.Product, error) {
	var productModels []*model.ProductModel

	if err := repo.db.WithContext(ctx).
		Where("store_id = ? AND quantity_available > 0", storeID).
		Order("last_seen DESC").
		Find(&productModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list available products by store")
	}

	products := make([]*entity.Product, 0, len(productModels))
	for _, productM := range productModels {
		products = append(products, toProductDomain(productM))
	}

	return products, nil
}

// fromProductDomain converts a domain entity into its GORM model.
func fromProductDomain(product *entity.Product) *model.ProductModel {
	return &model.ProductModel{
		ID:                product.ID,
		StoreID:           product.StoreID,
		ExternalID:        product.ExternalID,
		Name:              product.Name,
		Description:       product.Description,
		Category:          product.Category,
		OriginalPrice:     product.OriginalPrice,
		DiscountPrice:     product.DiscountPrice,
		DiscountPercent:   product.DiscountPercent,
		QuantityAvailable: product.QuantityAvailable,
		ExpiryDate:        product.ExpiryDate,
		ImageURL:          product.ImageURL,
		FirstSeen:         product.FirstSeen,
		LastSeen:          product.LastSeen,
	}
}

// toProductDomain converts a GORM model into its domain entity.
func toProductDomain(productM *model.ProductModel) *entity.Product {
	return &entity.Product{
		ID:                productM.ID,
		StoreID:           productM.StoreID,
		ExternalID:        productM.ExternalID,
		Name:              productM.Name,
		Description:       productM.Description,
		Category:          productM.Category,
		OriginalPrice:     productM.OriginalPrice,
		DiscountPrice:     productM.DiscountPrice,
		DiscountPercent:   productM.DiscountPercent,
		QuantityAvailable: productM.QuantityAvailable,
		ExpiryDate:        productM.ExpiryDate,
		ImageURL:          productM.ImageURL,
		FirstSeen:         productM.FirstSeen,
		LastSeen:          productM.LastSeen,
	}
}
