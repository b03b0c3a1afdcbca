package postgres

import (
	"context"

	"dealradar/internal/domain/entity"
	"dealradar/internal/domain/repository"
	"dealradar/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// storeRepository implements the repository.StoreRepository interface.
type storeRepository struct {
	db *gorm.DB
}

// NewStoreRepository is the constructor for storeRepository.
func NewStoreRepository(db *gorm.DB) repository.StoreRepository {
	return &storeRepository{
		db: db,
	}
}

// UpsertStore creates the store on first sighting or overwrites its mutable
// fields on conflict with the external id. Store metadata always reflects the
// latest observation; later writes win.
func (repo *storeRepository) UpsertStore(ctx context.Context, store *entity.Store) error {
	storeM := fromStoreDomain(store)

	if err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "address", "locality", "latitude", "longitude", "updated_at",
			}),
		}).
		Create(storeM).Error; err != nil {
		return errors.Wrap(err, "failed to upsert store")
	}

	// Re-read to pick up the surrogate key and timestamps regardless of
	// whether the row was inserted or updated.
	var stored model.StoreModel
	if err := repo.db.WithContext(ctx).
		Where("external_id = ?", store.ExternalID).
		First(&stored).Error; err != nil {
		return errors.Wrap(err, "failed to reload upserted store")
	}

	store.ID = stored.ID
	store.CreatedAt = stored.CreatedAt
	store.UpdatedAt = stored.UpdatedAt

	return nil
}

// FindStoreByExternalID retrieves a store by the source system's identifier.
func (repo *storeRepository) FindStoreByExternalID(ctx context.Context, externalID string) (*entity.Store, error) {
	var storeM model.StoreModel

	if err := repo.db.WithContext(ctx).
		Where("external_id = ?", externalID).
		First(&storeM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrStoreNotFound
		}

		return nil, errors.Wrap(err, "failed to find store by external ID")
	}

	return toStoreDomain(&storeM), nil
}

// ListStoresByLocality retrieves all stores discovered in a tracked locality.
func (repo *storeRepository) ListStoresByLocality(ctx context.Context, locality string) ([]*entity.Store, error) {
	var storeModels []*model.StoreModel

	if err := repo.db.WithContext(ctx).
		Where("locality = ?", locality).
		Order("name ASC").
		Find(&storeModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list stores by locality")
	}

	stores := make([]*entity.Store, 0, len(storeModels))
	for _, storeM := range storeModels {
		stores = append(stores, toStoreDomain(storeM))
	}

	return stores, nil
}

// fromStoreDomain converts a domain entity into its GORM model.
func fromStoreDomain(store *entity.Store) *model.StoreModel {
	return &model.StoreModel{
		ID:         store.ID,
		ExternalID: store.ExternalID,
		Name:       store.Name,
		Address:    store.Address,
		Locality:   store.Locality,
		Latitude:   store.Latitude,
		Longitude:  store.Longitude,
		CreatedAt:  store.CreatedAt,
		UpdatedAt:  store.UpdatedAt,
	}
}

// toStoreDomain converts a GORM model into its domain entity.
func toStoreDomain(storeM *model.StoreModel) *entity.Store {
	return &entity.Store{
		ID:         storeM.ID,
		ExternalID: storeM.ExternalID,
		Name:       storeM.Name,
		Address:    storeM.Address,
		Locality:   storeM.Locality,
		Latitude:   storeM.Latitude,
		Longitude:  storeM.Longitude,
		CreatedAt:  storeM.CreatedAt,
		UpdatedAt:  storeM.UpdatedAt,
	}
}
