package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"dealradar/config"
	"dealradar/internal/domain/entity"
	"dealradar/internal/domain/repository"
	"dealradar/internal/domain/service"
	"dealradar/internal/errors"

	"github.com/google/uuid"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// errTxAborted stands in for PostgreSQL's "current transaction is aborted"
// failure mode: after one statement fails, every later statement on the same
// transaction fails too until a savepoint rollback.
var errTxAborted = errors.New("current transaction is aborted")

// fakeStore is an in-memory stand-in for the persistence layer. Every fake
// repository view shares the same maps, the way transaction-bound
// repositories share one connection. Stores key by external id, products by
// store id then external id, price points by product id.
type fakeStore struct {
	mu          sync.Mutex
	stores      map[string]*entity.Store
	products    map[uuid.UUID]map[string]*entity.Product
	pricePoints map[uuid.UUID][]*entity.PricePoint

	aborted bool

	createProductErr    error
	createProductErrFor map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		stores:      make(map[string]*entity.Store),
		products:    make(map[uuid.UUID]map[string]*entity.Product),
		pricePoints: make(map[uuid.UUID][]*entity.PricePoint),
	}
}

// Execute satisfies repository.TransactionManager. The fake has no real
// transactions; rollback on error is not simulated, but statement poisoning
// after a failure is.
func (f *fakeStore) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	f.mu.Lock()
	f.aborted = false
	f.mu.Unlock()

	return fn(f)
}

// Atomic mimics a savepoint: a failure inside fn rolls the poisoned state
// back instead of sinking the rest of the transaction.
func (f *fakeStore) Atomic(_ context.Context, fn func() error) error {
	if err := fn(); err != nil {
		f.mu.Lock()
		f.aborted = false
		f.mu.Unlock()

		return err
	}

	return nil
}

func (f *fakeStore) NewStoreRepository() repository.StoreRepository { return (*fakeStoreRepo)(f) }
func (f *fakeStore) NewProductRepository() repository.ProductRepository {
	return (*fakeProductRepo)(f)
}
func (f *fakeStore) NewPriceHistoryRepository() repository.PriceHistoryRepository {
	return (*fakeHistoryRepo)(f)
}

func (f *fakeStore) productCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, products := range f.products {
		n += len(products)
	}

	return n
}

func (f *fakeStore) historyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, points := range f.pricePoints {
		n += len(points)
	}

	return n
}

func (f *fakeStore) product(storeID uuid.UUID, externalID string) *entity.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	if products, ok := f.products[storeID]; ok {
		return products[externalID]
	}

	return nil
}

type fakeStoreRepo fakeStore

func (r *fakeStoreRepo) UpsertStore(_ context.Context, store *entity.Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.aborted {
		return errTxAborted
	}

	existing, ok := r.stores[store.ExternalID]
	if !ok {
		if store.ID == uuid.Nil {
			store.ID = uuid.New()
		}
		store.CreatedAt = time.Now().UTC()
		store.UpdatedAt = store.CreatedAt
		copied := *store
		r.stores[store.ExternalID] = &copied

		return nil
	}

	existing.Name = store.Name
	existing.Address = store.Address
	existing.Locality = store.Locality
	existing.Latitude = store.Latitude
	existing.Longitude = store.Longitude
	existing.UpdatedAt = time.Now().UTC()
	store.ID = existing.ID
	store.CreatedAt = existing.CreatedAt
	store.UpdatedAt = existing.UpdatedAt

	return nil
}

func (r *fakeStoreRepo) FindStoreByExternalID(_ context.Context, externalID string) (*entity.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	store, ok := r.stores[externalID]
	if !ok {
		return nil, repository.ErrStoreNotFound
	}
	copied := *store

	return &copied, nil
}

func (r *fakeStoreRepo) ListStoresByLocality(_ context.Context, locality string) ([]*entity.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stores []*entity.Store
	for _, store := range r.stores {
		if store.Locality == locality {
			copied := *store
			stores = append(stores, &copied)
		}
	}

	return stores, nil
}

type fakeProductRepo fakeStore

func (r *fakeProductRepo) CreateProduct(_ context.Context, product *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.aborted {
		return errTxAborted
	}
	if err := r.createProductErrFor[product.ExternalID]; err != nil {
		r.aborted = true

		return err
	}
	if r.createProductErr != nil {
		r.aborted = true

		return r.createProductErr
	}

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if r.products[product.StoreID] == nil {
		r.products[product.StoreID] = make(map[string]*entity.Product)
	}
	copied := *product
	r.products[product.StoreID][product.ExternalID] = &copied

	return nil
}

func (r *fakeProductRepo) UpdateProduct(_ context.Context, product *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.aborted {
		return errTxAborted
	}

	products, ok := r.products[product.StoreID]
	if !ok || products[product.ExternalID] == nil {
		return repository.ErrProductNotFound
	}
	copied := *product
	products[product.ExternalID] = &copied

	return nil
}

func (r *fakeProductRepo) FindProductByStoreAndExternalID(_ context.Context, storeID uuid.UUID, externalID string) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.aborted {
		return nil, errTxAborted
	}

	if products, ok := r.products[storeID]; ok {
		if product, ok := products[externalID]; ok {
			copied := *product

			return &copied, nil
		}
	}

	return nil, repository.ErrProductNotFound
}

func (r *fakeProductRepo) MarkStaleProducts(_ context.Context, storeID uuid.UUID, seenExternalIDs []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.aborted {
		return 0, errTxAborted
	}

	seen := make(map[string]struct{}, len(seenExternalIDs))
	for _, id := range seenExternalIDs {
		seen[id] = struct{}{}
	}

	var marked int64
	for externalID, product := range r.products[storeID] {
		if _, ok := seen[externalID]; ok {
			continue
		}
		if product.QuantityAvailable > 0 {
			product.QuantityAvailable = 0
			product.LastSeen = time.Now().UTC()
			marked++
		}
	}

	return marked, nil
}

func (r *fakeProductRepo) ListAvailableProductsByStore(_ context.Context, storeID uuid.UUID) ([]*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var products []*entity.Product
	for _, product := range r.products[storeID] {
		if product.QuantityAvailable > 0 {
			copied := *product
			products = append(products, &copied)
		}
	}

	return products, nil
}

type fakeHistoryRepo fakeStore

func (r *fakeHistoryRepo) AppendPricePoint(_ context.Context, point *entity.PricePoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.aborted {
		return errTxAborted
	}

	if point.ID == uuid.Nil {
		point.ID = uuid.New()
	}
	copied := *point
	r.pricePoints[point.ProductID] = append(r.pricePoints[point.ProductID], &copied)

	return nil
}

func (r *fakeHistoryRepo) ListPricePointsByProduct(_ context.Context, productID uuid.UUID, limit int) ([]*entity.PricePoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	points := r.pricePoints[productID]
	if limit > 0 && len(points) > limit {
		points = points[len(points)-limit:]
	}
	out := make([]*entity.PricePoint, 0, len(points))
	for i := len(points) - 1; i >= 0; i-- {
		copied := *points[i]
		out = append(out, &copied)
	}

	return out, nil
}

// fakePreferenceRepo serves a fixed subscriber list.
type fakePreferenceRepo struct {
	newDealSubs   []*entity.SubscriberPreference
	priceDropSubs []*entity.SubscriberPreference
	err           error
}

func (r *fakePreferenceRepo) ListNewDealSubscribers(_ context.Context) ([]*entity.SubscriberPreference, error) {
	return r.newDealSubs, r.err
}

func (r *fakePreferenceRepo) ListPriceDropSubscribers(_ context.Context) ([]*entity.SubscriberPreference, error) {
	return r.priceDropSubs, r.err
}

// recordingSender captures every alert instead of sending it.
type recordingSender struct {
	mu         sync.Mutex
	dealAlerts []sentDealAlert
	dropAlerts []sentDropAlert
	failFor    map[string]error // by email
}

type sentDealAlert struct {
	email       string
	displayName string
	deals       []service.DealAlert
}

type sentDropAlert struct {
	email string
	drop  service.PriceDropAlert
}

func (s *recordingSender) SendDealAlert(_ context.Context, email, displayName string, deals []service.DealAlert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failFor[email]; err != nil {
		return err
	}
	s.dealAlerts = append(s.dealAlerts, sentDealAlert{email: email, displayName: displayName, deals: deals})

	return nil
}

func (s *recordingSender) SendPriceDropAlert(_ context.Context, email, _ string, drop service.PriceDropAlert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failFor[email]; err != nil {
		return err
	}
	s.dropAlerts = append(s.dropAlerts, sentDropAlert{email: email, drop: drop})

	return nil
}

// recordingBroadcaster captures broadcast events.
type recordingBroadcaster struct {
	mu     sync.Mutex
	events []service.BroadcastEvent
}

func (b *recordingBroadcaster) Broadcast(event service.BroadcastEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

// recordingPublisher captures cycle events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*service.CycleEvent
}

func (p *recordingPublisher) PublishCycleEvent(_ context.Context, event *service.CycleEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)

	return nil
}

func (p *recordingPublisher) Close() error { return nil }

// scriptedSource serves per-locality snapshots from a fixed script.
type scriptedSource struct {
	mu      sync.Mutex
	byKey   map[string][]*service.StoreSnapshot
	errFor  map[string]error
	fetches int
}

func (s *scriptedSource) FetchStoresNear(_ context.Context, locality entity.Locality) ([]*service.StoreSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches++

	if err := s.errFor[locality.Key]; err != nil {
		return nil, err
	}

	return s.byKey[locality.Key], nil
}

func (s *scriptedSource) FetchItemsForStore(_ context.Context, _ string) ([]*service.ProductObservation, error) {
	return nil, nil
}

func newTestSubscriber(locality string) *entity.SubscriberPreference {
	return &entity.SubscriberPreference{
		UserID:             uuid.New(),
		Email:              "user@example.com",
		DisplayName:        "Sam",
		Locality:           locality,
		EmailNotifications: true,
		NotifyNewDeals:     true,
		Window:             entity.TimeWindow{Start: 0, End: 23*60 + 59},
	}
}

func newIngestConfig(localities ...config.LocalityConfig) *config.Config {
	return &config.Config{
		Poll: &config.PollConfig{
			Interval:   5 * time.Minute,
			Localities: localities,
		},
		Dispatch: &config.DispatchConfig{MaxDealsPerAlert: 10},
	}
}

func snapshotWithItems(storeExternalID, locality string, items ...*service.ProductObservation) *service.StoreSnapshot {
	return &service.StoreSnapshot{
		Store: &entity.Store{
			ExternalID: storeExternalID,
			Name:       "Store " + storeExternalID,
			Locality:   locality,
		},
		Items: items,
	}
}

func observation(externalID string, price float64, qty int) *service.ProductObservation {
	return &service.ProductObservation{
		ExternalID:        externalID,
		Name:              "Item " + externalID,
		Category:          "Bakery",
		DiscountPrice:     price,
		QuantityAvailable: qty,
	}
}
