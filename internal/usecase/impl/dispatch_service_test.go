package impl

import (
	"context"
	"fmt"
	"testing"
	"time"

	"dealradar/config"
	"dealradar/internal/domain/entity"
	"dealradar/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(prefs *fakePreferenceRepo, sender *recordingSender, maxDeals int) *dispatchService {
	cfg := &config.Config{Dispatch: &config.DispatchConfig{MaxDealsPerAlert: maxDeals}}
	svc, ok := NewDispatchService(prefs, sender, cfg, newDiscardLogger()).(*dispatchService)
	if !ok {
		panic("unexpected dispatch service type")
	}

	return svc
}

func newDealDiff(locality string, discountPercent *int, category string) *usecase.DiffEntry {
	return &usecase.DiffEntry{
		Kind: usecase.DiffNew,
		Product: &entity.Product{
			ID:                uuid.New(),
			Name:              "Assorted Bakery Items",
			Category:          category,
			DiscountPrice:     3.49,
			DiscountPercent:   discountPercent,
			QuantityAvailable: 4,
		},
		Store: &entity.Store{
			ID:       uuid.New(),
			Name:     "No Frills Northland Village",
			Locality: locality,
		},
		NewPrice:    3.49,
		NewQuantity: 4,
	}
}

func intPtr(v int) *int { return &v }

func TestDispatchNewDeals_MinDiscountThreshold(t *testing.T) {
	tests := []struct {
		name            string
		discountPercent *int
		minDiscount     int
		wantNotified    int
	}{
		{name: "below threshold excluded", discountPercent: intPtr(15), minDiscount: 20, wantNotified: 0},
		{name: "above threshold included", discountPercent: intPtr(25), minDiscount: 20, wantNotified: 1},
		{name: "exact threshold included", discountPercent: intPtr(20), minDiscount: 20, wantNotified: 1},
		{name: "nil discount excluded by nonzero threshold", discountPercent: nil, minDiscount: 20, wantNotified: 0},
		{name: "nil discount passes zero threshold", discountPercent: nil, minDiscount: 0, wantNotified: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := newTestSubscriber("calgary")
			sub.MinDiscountPercent = tt.minDiscount

			sender := &recordingSender{}
			svc := newTestDispatcher(&fakePreferenceRepo{newDealSubs: []*entity.SubscriberPreference{sub}}, sender, 10)

			notified, err := svc.DispatchNewDeals(context.Background(),
				[]*usecase.DiffEntry{newDealDiff("calgary", tt.discountPercent, "Bakery")})
			require.NoError(t, err)
			assert.Equal(t, tt.wantNotified, notified)
			assert.Len(t, sender.dealAlerts, tt.wantNotified)
		})
	}
}

func TestDispatchNewDeals_TimeWindowWrapsMidnight(t *testing.T) {
	sub := newTestSubscriber("calgary")
	sub.Window = entity.TimeWindow{Start: 22 * 60, End: 5 * 60} // 22:00-05:00

	tests := []struct {
		name         string
		clock        time.Time
		wantNotified int
	}{
		{name: "inside wrapped window", clock: time.Date(2026, 8, 30, 23, 30, 0, 0, time.UTC), wantNotified: 1},
		{name: "outside wrapped window", clock: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC), wantNotified: 0},
		{name: "early morning tail", clock: time.Date(2026, 8, 30, 4, 59, 0, 0, time.UTC), wantNotified: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &recordingSender{}
			svc := newTestDispatcher(&fakePreferenceRepo{newDealSubs: []*entity.SubscriberPreference{sub}}, sender, 10)
			svc.now = func() time.Time { return tt.clock }

			notified, err := svc.DispatchNewDeals(context.Background(),
				[]*usecase.DiffEntry{newDealDiff("calgary", intPtr(50), "Bakery")})
			require.NoError(t, err)
			assert.Equal(t, tt.wantNotified, notified)
		})
	}
}

func TestDispatchNewDeals_LocalityMustMatchPerDeal(t *testing.T) {
	sub := newTestSubscriber("calgary")
	sender := &recordingSender{}
	svc := newTestDispatcher(&fakePreferenceRepo{newDealSubs: []*entity.SubscriberPreference{sub}}, sender, 10)

	diffs := []*usecase.DiffEntry{
		newDealDiff("edmonton", intPtr(50), "Bakery"),
		newDealDiff("calgary", intPtr(50), "Bakery"),
	}

	notified, err := svc.DispatchNewDeals(context.Background(), diffs)
	require.NoError(t, err)
	assert.Equal(t, 1, notified)
	require.Len(t, sender.dealAlerts, 1)
	assert.Len(t, sender.dealAlerts[0].deals, 1)
}

func TestDispatchNewDeals_StoreSelectionFilter(t *testing.T) {
	wanted := newDealDiff("calgary", intPtr(50), "Bakery")
	unwanted := newDealDiff("calgary", intPtr(50), "Bakery")

	sub := newTestSubscriber("calgary")
	sub.SelectedStoreIDs = []uuid.UUID{wanted.Store.ID}

	sender := &recordingSender{}
	svc := newTestDispatcher(&fakePreferenceRepo{newDealSubs: []*entity.SubscriberPreference{sub}}, sender, 10)

	notified, err := svc.DispatchNewDeals(context.Background(), []*usecase.DiffEntry{wanted, unwanted})
	require.NoError(t, err)
	assert.Equal(t, 1, notified)
	require.Len(t, sender.dealAlerts, 1)
	assert.Len(t, sender.dealAlerts[0].deals, 1)
	assert.Equal(t, wanted.Store.Name, sender.dealAlerts[0].deals[0].StoreName)
}

func TestDispatchNewDeals_CategoryFilterIsCaseInsensitive(t *testing.T) {
	sub := newTestSubscriber("calgary")
	sub.FavoriteCategories = []string{"bakery"}

	sender := &recordingSender{}
	svc := newTestDispatcher(&fakePreferenceRepo{newDealSubs: []*entity.SubscriberPreference{sub}}, sender, 10)

	diffs := []*usecase.DiffEntry{
		newDealDiff("calgary", intPtr(50), "Bakery"),
		newDealDiff("calgary", intPtr(50), "Meat"),
	}

	notified, err := svc.DispatchNewDeals(context.Background(), diffs)
	require.NoError(t, err)
	assert.Equal(t, 1, notified)
	require.Len(t, sender.dealAlerts, 1)
	assert.Len(t, sender.dealAlerts[0].deals, 1)
	assert.Equal(t, "Bakery", sender.dealAlerts[0].deals[0].Category)
}

func TestDispatchNewDeals_BatchesAndCapsDeals(t *testing.T) {
	sub := newTestSubscriber("calgary")
	sender := &recordingSender{}
	svc := newTestDispatcher(&fakePreferenceRepo{newDealSubs: []*entity.SubscriberPreference{sub}}, sender, 3)

	var diffs []*usecase.DiffEntry
	for i := 0; i < 5; i++ {
		diff := newDealDiff("calgary", intPtr(50), "Bakery")
		diff.Product.Name = fmt.Sprintf("Deal %d", i)
		diffs = append(diffs, diff)
	}

	notified, err := svc.DispatchNewDeals(context.Background(), diffs)
	require.NoError(t, err)
	assert.Equal(t, 1, notified)
	require.Len(t, sender.dealAlerts, 1)
	assert.Len(t, sender.dealAlerts[0].deals, 3)
}

func TestDispatchNewDeals_SendFailureDoesNotBlockOthers(t *testing.T) {
	broken := newTestSubscriber("calgary")
	broken.Email = "broken@example.com"
	healthy := newTestSubscriber("calgary")

	sender := &recordingSender{failFor: map[string]error{"broken@example.com": errors.New("mailbox full")}}
	svc := newTestDispatcher(&fakePreferenceRepo{
		newDealSubs: []*entity.SubscriberPreference{broken, healthy},
	}, sender, 10)

	notified, err := svc.DispatchNewDeals(context.Background(),
		[]*usecase.DiffEntry{newDealDiff("calgary", intPtr(50), "Bakery")})
	require.NoError(t, err)
	assert.Equal(t, 1, notified)
	require.Len(t, sender.dealAlerts, 1)
	assert.Equal(t, "user@example.com", sender.dealAlerts[0].email)
}

func TestDispatchNewDeals_NoNewEntriesSendsNothing(t *testing.T) {
	sender := &recordingSender{}
	svc := newTestDispatcher(&fakePreferenceRepo{
		newDealSubs: []*entity.SubscriberPreference{newTestSubscriber("calgary")},
	}, sender, 10)

	changed := newDealDiff("calgary", intPtr(50), "Bakery")
	changed.Kind = usecase.DiffChanged

	notified, err := svc.DispatchNewDeals(context.Background(), []*usecase.DiffEntry{changed})
	require.NoError(t, err)
	assert.Zero(t, notified)
	assert.Empty(t, sender.dealAlerts)
}

func TestDispatchNewDeals_DisplayNameFallsBackToEmail(t *testing.T) {
	sub := newTestSubscriber("calgary")
	sub.DisplayName = ""

	sender := &recordingSender{}
	svc := newTestDispatcher(&fakePreferenceRepo{newDealSubs: []*entity.SubscriberPreference{sub}}, sender, 10)

	_, err := svc.DispatchNewDeals(context.Background(),
		[]*usecase.DiffEntry{newDealDiff("calgary", intPtr(50), "Bakery")})
	require.NoError(t, err)
	require.Len(t, sender.dealAlerts, 1)
	assert.Equal(t, sub.Email, sender.dealAlerts[0].displayName)
}

func TestDispatchPriceDrops(t *testing.T) {
	sub := newTestSubscriber("calgary")
	sub.NotifyPriceDrops = true

	drop := newDealDiff("calgary", intPtr(50), "Bakery")
	drop.Kind = usecase.DiffChanged
	drop.OldPrice = 4.99
	drop.NewPrice = 2.99

	rise := newDealDiff("calgary", intPtr(50), "Bakery")
	rise.Kind = usecase.DiffChanged
	rise.OldPrice = 2.99
	rise.NewPrice = 4.99

	sender := &recordingSender{}
	svc := newTestDispatcher(&fakePreferenceRepo{priceDropSubs: []*entity.SubscriberPreference{sub}}, sender, 10)

	sent, err := svc.DispatchPriceDrops(context.Background(), []*usecase.DiffEntry{drop, rise})
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, sender.dropAlerts, 1)
	assert.InDelta(t, 4.99, sender.dropAlerts[0].drop.OldPrice, 1e-9)
	assert.InDelta(t, 2.99, sender.dropAlerts[0].drop.NewPrice, 1e-9)
}

func TestDispatchPriceDrops_IgnoresDiscountThreshold(t *testing.T) {
	sub := newTestSubscriber("calgary")
	sub.NotifyPriceDrops = true
	sub.MinDiscountPercent = 90

	drop := newDealDiff("calgary", nil, "Bakery")
	drop.Kind = usecase.DiffChanged
	drop.OldPrice = 4.99
	drop.NewPrice = 2.99

	sender := &recordingSender{}
	svc := newTestDispatcher(&fakePreferenceRepo{priceDropSubs: []*entity.SubscriberPreference{sub}}, sender, 10)

	sent, err := svc.DispatchPriceDrops(context.Background(), []*usecase.DiffEntry{drop})
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}
