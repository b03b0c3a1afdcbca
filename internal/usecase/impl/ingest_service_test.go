package impl

import (
	"context"
	"testing"

	"dealradar/config"
	"dealradar/internal/domain/entity"
	domainerrors "dealradar/internal/domain/errors"
	"dealradar/internal/domain/service"
	"dealradar/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ingestFixture struct {
	store       *fakeStore
	source      *scriptedSource
	sender      *recordingSender
	broadcaster *recordingBroadcaster
	publisher   *recordingPublisher
	ingest      usecase.IngestUsecase
}

func newIngestFixture(t *testing.T, subs []*entity.SubscriberPreference, localities ...config.LocalityConfig) *ingestFixture {
	t.Helper()

	if len(localities) == 0 {
		localities = []config.LocalityConfig{{Key: "calgary", Name: "Calgary", Latitude: 51.0447, Longitude: -114.0719}}
	}

	cfg := newIngestConfig(localities...)
	logger := newDiscardLogger()

	store := newFakeStore()
	source := &scriptedSource{byKey: map[string][]*service.StoreSnapshot{}, errFor: map[string]error{}}
	sender := &recordingSender{}
	broadcaster := &recordingBroadcaster{}
	publisher := &recordingPublisher{}

	reconciler := NewReconcileService(store, logger)
	dispatcher := NewDispatchService(&fakePreferenceRepo{newDealSubs: subs, priceDropSubs: subs}, sender, cfg, logger)
	ingest := NewIngestService(source, reconciler, dispatcher, broadcaster, publisher, cfg, logger)

	return &ingestFixture{
		store:       store,
		source:      source,
		sender:      sender,
		broadcaster: broadcaster,
		publisher:   publisher,
		ingest:      ingest,
	}
}

func TestRunCycle_EndToEndThreeCycles(t *testing.T) {
	sub := newTestSubscriber("calgary")
	sub.NotifyPriceDrops = true
	f := newIngestFixture(t, []*entity.SubscriberPreference{sub})
	ctx := context.Background()

	// First cycle: one brand new item.
	f.source.byKey["calgary"] = []*service.StoreSnapshot{
		snapshotWithItems("s1", "calgary", observation("a", 3.99, 5)),
	}

	result, err := f.ingest.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.StoresSeen)
	assert.Equal(t, 1, result.NewDeals)
	assert.Zero(t, result.ChangedDeals)
	assert.Equal(t, 1, result.NotifiedUsers)
	assert.Equal(t, 1, f.store.historyCount())
	require.Len(t, f.sender.dealAlerts, 1)
	require.Len(t, f.broadcaster.events, 1)
	assert.Equal(t, service.BroadcastTypeNewDeals, f.broadcaster.events[0].Type)
	assert.Equal(t, 1, f.broadcaster.events[0].Count)

	// Second cycle: same item, lower price.
	f.source.byKey["calgary"] = []*service.StoreSnapshot{
		snapshotWithItems("s1", "calgary", observation("a", 2.99, 5)),
	}

	result, err = f.ingest.RunCycle(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.NewDeals)
	assert.Equal(t, 1, result.ChangedDeals)
	assert.Zero(t, result.NotifiedUsers)
	assert.Equal(t, 2, f.store.historyCount())
	// Price drop alert went out, but no new-deal broadcast.
	require.Len(t, f.sender.dropAlerts, 1)
	assert.Len(t, f.broadcaster.events, 1)

	// Third cycle: item disappeared.
	f.source.byKey["calgary"] = []*service.StoreSnapshot{
		snapshotWithItems("s1", "calgary"),
	}

	result, err = f.ingest.RunCycle(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.NewDeals)
	assert.Zero(t, result.ChangedDeals)
	assert.Equal(t, 1, result.StaleMarked)
	assert.Equal(t, 2, f.store.historyCount())
	assert.Len(t, f.broadcaster.events, 1)

	snapshot := f.source.byKey["calgary"][0]
	product := f.store.product(snapshot.Store.ID, "a")
	require.NotNil(t, product)
	assert.Zero(t, product.QuantityAvailable)

	// Every cycle published a summary event.
	require.Len(t, f.publisher.events, 3)
	assert.Equal(t, 1, f.publisher.events[0].NewDeals)
	assert.Equal(t, 1, f.publisher.events[1].ChangedDeals)
	assert.Equal(t, []string{"calgary"}, f.publisher.events[2].Localities)
}

func TestRunCycle_LocalityFailureDoesNotAbortCycle(t *testing.T) {
	f := newIngestFixture(t, nil,
		config.LocalityConfig{Key: "calgary", Name: "Calgary", Latitude: 51.0447, Longitude: -114.0719},
		config.LocalityConfig{Key: "edmonton", Name: "Edmonton", Latitude: 53.5461, Longitude: -113.4938},
	)

	f.source.errFor["calgary"] = errors.Wrap(service.ErrSourceRejected, "status 503")
	f.source.byKey["edmonton"] = []*service.StoreSnapshot{
		snapshotWithItems("s2", "edmonton", observation("x", 1.99, 2)),
	}

	result, err := f.ingest.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.StoresSeen)
	assert.Equal(t, 1, result.NewDeals)
	assert.Equal(t, 1, result.FailedLocalities)
	assert.ElementsMatch(t, []string{"calgary", "edmonton"}, result.Localities)
}

func TestRunCycle_NoLocalitiesConfigured(t *testing.T) {
	cfg := newIngestConfig()
	logger := newDiscardLogger()
	store := newFakeStore()

	ingest := NewIngestService(
		&scriptedSource{},
		NewReconcileService(store, logger),
		NewDispatchService(&fakePreferenceRepo{}, &recordingSender{}, cfg, logger),
		&recordingBroadcaster{},
		&recordingPublisher{},
		cfg,
		logger,
	)

	_, err := ingest.RunCycle(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrNoLocalities))
}

func TestRunCycle_NoNewDealsNoBroadcast(t *testing.T) {
	f := newIngestFixture(t, nil)
	ctx := context.Background()

	f.source.byKey["calgary"] = []*service.StoreSnapshot{
		snapshotWithItems("s1", "calgary", observation("a", 3.99, 5)),
	}
	_, err := f.ingest.RunCycle(ctx)
	require.NoError(t, err)
	require.Len(t, f.broadcaster.events, 1)

	// Identical snapshot: nothing new, broadcast stays quiet.
	_, err = f.ingest.RunCycle(ctx)
	require.NoError(t, err)
	assert.Len(t, f.broadcaster.events, 1)
}

func TestRunCycle_ConcurrentLocalityFetches(t *testing.T) {
	localities := []config.LocalityConfig{
		{Key: "calgary", Name: "Calgary", Latitude: 51.0447, Longitude: -114.0719},
		{Key: "edmonton", Name: "Edmonton", Latitude: 53.5461, Longitude: -113.4938},
		{Key: "lethbridge", Name: "Lethbridge", Latitude: 49.6956, Longitude: -112.8451},
	}
	f := newIngestFixture(t, nil, localities...)

	for i, lc := range localities {
		f.source.byKey[lc.Key] = []*service.StoreSnapshot{
			snapshotWithItems(lc.Key+"-store", lc.Key, observation("a", float64(i)+1, 1)),
		}
	}

	result, err := f.ingest.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.StoresSeen)
	assert.Equal(t, 3, result.NewDeals)
	assert.Equal(t, 3, f.source.fetches)
}
