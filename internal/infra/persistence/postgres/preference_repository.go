package postgres

import (
	"context"
	"log/slog"

	"dealradar/internal/domain/entity"
	"dealradar/internal/domain/repository"
	"dealradar/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// preferenceRepository implements the repository.PreferenceRepository interface.
// The table is owned by the user management system; this repository only reads.
type preferenceRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewPreferenceRepository is the constructor for preferenceRepository.
func NewPreferenceRepository(db *gorm.DB, logger *slog.Logger) repository.PreferenceRepository {
	return &preferenceRepository{
		db:     db,
		logger: logger,
	}
}

// ListNewDealSubscribers retrieves every subscriber with email notifications
// and new-deal alerts enabled.
func (repo *preferenceRepository) ListNewDealSubscribers(ctx context.Context) ([]*entity.SubscriberPreference, error) {
	return repo.listSubscribers(ctx, "notify_new_deals")
}

// ListPriceDropSubscribers retrieves every subscriber with email notifications
// and price-drop alerts enabled.
func (repo *preferenceRepository) ListPriceDropSubscribers(ctx context.Context) ([]*entity.SubscriberPreference, error) {
	return repo.listSubscribers(ctx, "notify_price_drops")
}

func (repo *preferenceRepository) listSubscribers(ctx context.Context, alertColumn string) ([]*entity.SubscriberPreference, error) {
	var prefModels []*model.SubscriberPreferenceModel

	if err := repo.db.WithContext(ctx).
		Where("email_notifications = ?", true).
		Where(alertColumn+" = ?", true).
		Find(&prefModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list subscribers")
	}

	prefs := make([]*entity.SubscriberPreference, 0, len(prefModels))
	for _, prefM := range prefModels {
		pref, err := toPreferenceDomain(prefM)
		if err != nil {
			// Malformed rows come from the owning system; skip rather than
			// fail the whole dispatch.
			repo.logger.WarnContext(ctx, "skipping malformed subscriber preference",
				slog.String("userID", prefM.UserID.String()),
				slog.Any("error", err))

			continue
		}
		prefs = append(prefs, pref)
	}

	return prefs, nil
}

// toPreferenceDomain converts a GORM model into its domain entity.
func toPreferenceDomain(prefM *model.SubscriberPreferenceModel) (*entity.SubscriberPreference, error) {
	start, err := entity.ParseClock(prefM.NotificationStart)
	if err != nil {
		return nil, errors.Wrap(err, "invalid notification start")
	}

	end, err := entity.ParseClock(prefM.NotificationEnd)
	if err != nil {
		return nil, errors.Wrap(err, "invalid notification end")
	}

	return &entity.SubscriberPreference{
		UserID:             prefM.UserID,
		Email:              prefM.Email,
		DisplayName:        prefM.DisplayName,
		Locality:           prefM.Locality,
		SelectedStoreIDs:   prefM.SelectedStoreIDs,
		MinDiscountPercent: prefM.MinDiscountPercent,
		FavoriteCategories: prefM.FavoriteCategories,
		EmailNotifications: prefM.EmailNotifications,
		NotifyNewDeals:     prefM.NotifyNewDeals,
		NotifyPriceDrops:   prefM.NotifyPriceDrops,
		Window: entity.TimeWindow{
			Start: start,
			End:   end,
		},
	}, nil
}
