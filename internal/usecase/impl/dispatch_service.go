package impl

import (
	"context"
	"log/slog"
	"time"

	"dealradar/config"
	"dealradar/internal/domain/entity"
	"dealradar/internal/domain/repository"
	"dealradar/internal/domain/service"
	"dealradar/internal/usecase"
)

const defaultMaxDealsPerAlert = 10

type dispatchService struct {
	preferenceRepo   repository.PreferenceRepository
	sender           service.DealAlertSender
	logger           *slog.Logger
	maxDealsPerAlert int

	// now is the dispatch clock, swappable for window tests. Windows are
	// evaluated against UTC wall time.
	now func() time.Time
}

// NewDispatchService creates a new dispatch service instance.
func NewDispatchService(
	preferenceRepo repository.PreferenceRepository,
	sender service.DealAlertSender,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.DispatchUsecase {
	maxDeals := defaultMaxDealsPerAlert
	if cfg != nil && cfg.Dispatch != nil && cfg.Dispatch.MaxDealsPerAlert > 0 {
		maxDeals = cfg.Dispatch.MaxDealsPerAlert
	}

	return &dispatchService{
		preferenceRepo:   preferenceRepo,
		sender:           sender,
		logger:           logger,
		maxDealsPerAlert: maxDeals,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// DispatchNewDeals sends one batched alert per subscriber whose filters match
// at least one new-kind entry.
func (s *dispatchService) DispatchNewDeals(ctx context.Context, diffs []*usecase.DiffEntry) (int, error) {
	newDeals := filterDiffs(diffs, func(d *usecase.DiffEntry) bool { return d.Kind == usecase.DiffNew })
	if len(newDeals) == 0 {
		return 0, nil
	}

	subscribers, err := s.preferenceRepo.ListNewDealSubscribers(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, sub := range subscribers {
		if !sub.Window.Contains(s.now()) {
			s.logger.DebugContext(ctx, "subscriber outside notification window",
				slog.String("email", sub.Email))

			continue
		}

		matching := s.matchDeals(newDeals, sub)
		if len(matching) == 0 {
			continue
		}

		if len(matching) > s.maxDealsPerAlert {
			matching = matching[:s.maxDealsPerAlert]
		}

		if err := s.sender.SendDealAlert(ctx, sub.Email, displayName(sub), matching); err != nil {
			// One refused mailbox must not block the rest of the run.
			s.logger.ErrorContext(ctx, "failed to send deal alert",
				slog.String("email", sub.Email),
				slog.Any("error", err))

			continue
		}

		sent++
		s.logger.InfoContext(ctx, "deal alert sent",
			slog.String("email", sub.Email),
			slog.Int("deals", len(matching)))
	}

	s.logger.InfoContext(ctx, "new deal dispatch complete",
		slog.Int("candidates", len(newDeals)),
		slog.Int("notified", sent))

	return sent, nil
}

// DispatchPriceDrops sends one alert per matching price drop, to every
// subscriber who opted into price drop notifications.
func (s *dispatchService) DispatchPriceDrops(ctx context.Context, diffs []*usecase.DiffEntry) (int, error) {
	drops := filterDiffs(diffs, func(d *usecase.DiffEntry) bool { return d.IsPriceDrop() })
	if len(drops) == 0 {
		return 0, nil
	}

	subscribers, err := s.preferenceRepo.ListPriceDropSubscribers(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, sub := range subscribers {
		if !sub.Window.Contains(s.now()) {
			continue
		}

		for _, drop := range drops {
			if !s.matchesSubscriber(drop, sub, false) {
				continue
			}

			alert := service.PriceDropAlert{
				ProductName: drop.Product.Name,
				OldPrice:    drop.OldPrice,
				NewPrice:    drop.NewPrice,
				StoreName:   drop.Store.Name,
			}
			if err := s.sender.SendPriceDropAlert(ctx, sub.Email, displayName(sub), alert); err != nil {
				s.logger.ErrorContext(ctx, "failed to send price drop alert",
					slog.String("email", sub.Email),
					slog.String("product", drop.Product.Name),
					slog.Any("error", err))

				continue
			}

			sent++
		}
	}

	s.logger.InfoContext(ctx, "price drop dispatch complete",
		slog.Int("candidates", len(drops)),
		slog.Int("alerts", sent))

	return sent, nil
}

// matchDeals collects the alert payloads for every entry the subscriber's
// filters accept.
func (s *dispatchService) matchDeals(diffs []*usecase.DiffEntry, sub *entity.SubscriberPreference) []service.DealAlert {
	var alerts []service.DealAlert
	for _, diff := range diffs {
		if !s.matchesSubscriber(diff, sub, true) {
			continue
		}

		product := diff.Product
		alerts = append(alerts, service.DealAlert{
			Name:              product.Name,
			Description:       product.Description,
			Category:          product.Category,
			OriginalPrice:     product.OriginalPrice,
			DiscountPrice:     product.DiscountPrice,
			DiscountPercent:   product.DiscountPercent,
			QuantityAvailable: product.QuantityAvailable,
			ExpiryDate:        product.ExpiryDate,
			StoreName:         diff.Store.Name,
			StoreLocality:     diff.Store.Locality,
		})
	}

	return alerts
}

// matchesSubscriber evaluates the per-deal filters in order: locality, store
// selection, minimum discount (new deals only), favorite categories.
func (s *dispatchService) matchesSubscriber(diff *usecase.DiffEntry, sub *entity.SubscriberPreference, checkDiscount bool) bool {
	if diff.Store.Locality != sub.Locality {
		return false
	}

	if !sub.WantsStore(diff.Store.ID) {
		return false
	}

	if checkDiscount && sub.MinDiscountPercent > 0 {
		// A deal with no computable discount cannot clear a nonzero threshold.
		if diff.Product.DiscountPercent == nil || *diff.Product.DiscountPercent < sub.MinDiscountPercent {
			return false
		}
	}

	return sub.WantsCategory(diff.Product.Category)
}

func filterDiffs(diffs []*usecase.DiffEntry, keep func(*usecase.DiffEntry) bool) []*usecase.DiffEntry {
	var out []*usecase.DiffEntry
	for _, d := range diffs {
		if keep(d) {
			out = append(out, d)
		}
	}

	return out
}

func displayName(sub *entity.SubscriberPreference) string {
	if sub.DisplayName != "" {
		return sub.DisplayName
	}

	return sub.Email
}
