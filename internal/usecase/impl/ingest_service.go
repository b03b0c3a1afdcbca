package impl

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"dealradar/config"
	"dealradar/internal/domain/entity"
	domainerrors "dealradar/internal/domain/errors"
	"dealradar/internal/domain/service"
	"dealradar/internal/usecase"

	"github.com/google/uuid"
)

type ingestService struct {
	source      service.DealSource
	reconciler  usecase.ReconcileUsecase
	dispatcher  usecase.DispatchUsecase
	broadcaster service.Broadcaster
	publisher   service.EventPublisher
	logger      *slog.Logger

	localities   []entity.Locality
	fetchWorkers int
	now          func() time.Time
}

// localityFetch carries one locality's fetch outcome out of the worker pool.
type localityFetch struct {
	locality  entity.Locality
	snapshots []*service.StoreSnapshot
	err       error
}

// NewIngestService creates a new ingest service instance.
func NewIngestService(
	source service.DealSource,
	reconciler usecase.ReconcileUsecase,
	dispatcher usecase.DispatchUsecase,
	broadcaster service.Broadcaster,
	publisher service.EventPublisher,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.IngestUsecase {
	localities := make([]entity.Locality, 0, len(cfg.Poll.Localities))
	for _, lc := range cfg.Poll.Localities {
		localities = append(localities, entity.Locality{
			Key:       lc.Key,
			Name:      lc.Name,
			Latitude:  lc.Latitude,
			Longitude: lc.Longitude,
		})
	}

	workers := cfg.Poll.FetchWorkers
	if workers <= 0 || workers > len(localities) {
		workers = len(localities)
	}

	return &ingestService{
		source:       source,
		reconciler:   reconciler,
		dispatcher:   dispatcher,
		broadcaster:  broadcaster,
		publisher:    publisher,
		logger:       logger,
		localities:   localities,
		fetchWorkers: workers,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// RunCycle executes one full ingestion cycle: concurrent per-locality fetch,
// sequential per-store reconciliation, then dispatch, broadcast and event
// publishing over the combined diff.
func (s *ingestService) RunCycle(ctx context.Context) (*usecase.CycleResult, error) {
	if len(s.localities) == 0 {
		return nil, domainerrors.ErrNoLocalities
	}

	result := &usecase.CycleResult{StartedAt: s.now()}
	for _, lc := range s.localities {
		result.Localities = append(result.Localities, lc.Key)
	}

	s.logger.InfoContext(ctx, "ingestion cycle started",
		slog.Int("localities", len(s.localities)))

	var diffs []*usecase.DiffEntry
	for fetch := range s.fetchLocalities(ctx) {
		if fetch.err != nil {
			// A failing locality is retried on the next cycle, not now.
			result.FailedLocalities++
			s.logger.ErrorContext(ctx, "locality fetch failed",
				slog.String("locality", fetch.locality.Key),
				slog.Any("error", fetch.err))

			continue
		}

		for _, snapshot := range fetch.snapshots {
			reconciled, err := s.reconciler.ReconcileSnapshot(ctx, snapshot)
			if err != nil {
				s.logger.ErrorContext(ctx, "store reconciliation failed",
					slog.String("locality", fetch.locality.Key),
					slog.String("store", snapshot.Store.ExternalID),
					slog.Any("error", err))

				continue
			}

			result.StoresSeen++
			result.ProductsSeen += len(snapshot.Items)
			result.StaleMarked += int(reconciled.StaleMarked)
			diffs = append(diffs, reconciled.Diffs...)
		}
	}

	for _, diff := range diffs {
		switch diff.Kind {
		case usecase.DiffNew:
			result.NewDeals++
		case usecase.DiffChanged:
			result.ChangedDeals++
		}
	}

	s.finishCycle(ctx, result, diffs)

	return result, nil
}

// fetchLocalities runs the per-locality fetches on a bounded worker pool and
// streams results as they arrive.
func (s *ingestService) fetchLocalities(ctx context.Context) <-chan localityFetch {
	workCh := make(chan entity.Locality, len(s.localities))
	resultCh := make(chan localityFetch, len(s.localities))

	var workerGroup sync.WaitGroup
	for i := 0; i < s.fetchWorkers; i++ {
		workerGroup.Add(1)
		go func() {
			defer workerGroup.Done()
			for lc := range workCh {
				if ctx.Err() != nil {
					resultCh <- localityFetch{locality: lc, err: ctx.Err()}

					continue
				}

				snapshots, err := s.source.FetchStoresNear(ctx, lc)
				resultCh <- localityFetch{locality: lc, snapshots: snapshots, err: err}
			}
		}()
	}

	for _, lc := range s.localities {
		workCh <- lc
	}
	close(workCh)

	go func() {
		workerGroup.Wait()
		close(resultCh)
	}()

	return resultCh
}

// finishCycle dispatches notifications, broadcasts and publishes the cycle
// event. All of it is best effort; failures are logged, never returned.
func (s *ingestService) finishCycle(ctx context.Context, result *usecase.CycleResult, diffs []*usecase.DiffEntry) {
	notified, err := s.dispatcher.DispatchNewDeals(ctx, diffs)
	if err != nil {
		s.logger.ErrorContext(ctx, "new deal dispatch failed", slog.Any("error", err))
	}
	result.NotifiedUsers = notified

	if _, err := s.dispatcher.DispatchPriceDrops(ctx, diffs); err != nil {
		s.logger.ErrorContext(ctx, "price drop dispatch failed", slog.Any("error", err))
	}

	result.CompletedAt = s.now()

	if result.NewDeals > 0 {
		s.broadcaster.Broadcast(service.BroadcastEvent{
			Type:      service.BroadcastTypeNewDeals,
			Count:     result.NewDeals,
			Message:   fmt.Sprintf("%d new deals found!", result.NewDeals),
			Timestamp: result.CompletedAt,
		})
	}

	event := &service.CycleEvent{
		RequestID:    uuid.NewString(),
		CompletedAt:  result.CompletedAt,
		NewDeals:     result.NewDeals,
		ChangedDeals: result.ChangedDeals,
		StoresSeen:   result.StoresSeen,
		Localities:   result.Localities,
	}
	if err := s.publisher.PublishCycleEvent(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "cycle event publish failed", slog.Any("error", err))
	}

	s.logger.InfoContext(ctx, "ingestion cycle complete",
		slog.Int("stores", result.StoresSeen),
		slog.Int("products", result.ProductsSeen),
		slog.Int("newDeals", result.NewDeals),
		slog.Int("changedDeals", result.ChangedDeals),
		slog.Int("staleMarked", result.StaleMarked),
		slog.Int("notified", result.NotifiedUsers),
		slog.Duration("took", result.CompletedAt.Sub(result.StartedAt)))
}
