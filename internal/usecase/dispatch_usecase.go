package usecase

import "context"

// DispatchUsecase fans a cycle's diff out to matching subscribers.
type DispatchUsecase interface {
	// DispatchNewDeals sends one batched alert per subscriber whose filters
	// match at least one new-kind entry. Send failures are logged and counted
	// as non-successes. Returns the number of alerts delivered.
	DispatchNewDeals(ctx context.Context, diffs []*DiffEntry) (int, error)

	// DispatchPriceDrops sends one alert per matching price drop to every
	// subscriber who opted into price drop notifications. Returns the number
	// of alerts delivered.
	DispatchPriceDrops(ctx context.Context, diffs []*DiffEntry) (int, error)
}
