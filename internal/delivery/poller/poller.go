// Package poller drives the fixed-interval ingestion schedule.
package poller

import (
	"context"
	"log/slog"
	"sync"

	"dealradar/config"
	"dealradar/internal/delivery"
	"dealradar/internal/usecase"

	"github.com/roylee0704/gron"
	"go.uber.org/fx"
)

type PollerParams struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
	Ingest usecase.IngestUsecase
}

// poller runs one ingestion cycle immediately on start and then one per
// configured interval. Overlapping cycles are tolerated; reconciliation
// is last-write-wins.
type poller struct {
	cfg    *config.Config
	logger *slog.Logger
	ingest usecase.IngestUsecase

	mu      sync.Mutex
	cron    *gron.Cron
	running bool
}

// NewPoller is the constructor for the polling delivery.
func NewPoller(params PollerParams) delivery.Delivery {
	p := &poller{
		cfg:    params.Config,
		logger: params.Logger,
		ingest: params.Ingest,
	}

	params.Append(fx.Hook{
		OnStop: func(context.Context) error {
			p.stop()

			return nil
		},
	})

	return p
}

// Serve starts the schedule and blocks until the context is canceled.
// Starting an already running poller is a warned no-op.
func (p *poller) Serve(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		p.logger.Warn("poller already running, ignoring start")

		return nil
	}

	p.cron = gron.New()
	p.cron.AddFunc(gron.Every(p.cfg.Poll.Interval), func() {
		p.runCycle(ctx)
	})
	p.cron.Start()
	p.running = true
	p.mu.Unlock()

	p.logger.Info("poller started",
		slog.Duration("interval", p.cfg.Poll.Interval),
		slog.Int("localities", len(p.cfg.Poll.Localities)))

	// First cycle runs right away; gron only fires after one interval.
	p.runCycle(ctx)

	<-ctx.Done()
	p.stop()

	return ctx.Err()
}

func (p *poller) runCycle(ctx context.Context) {
	result, err := p.ingest.RunCycle(ctx)
	if err != nil {
		p.logger.Error("scheduled ingestion cycle failed", slog.Any("error", err))

		return
	}

	p.logger.Info("scheduled ingestion cycle completed",
		slog.Int("new_deals", result.NewDeals),
		slog.Int("changed_deals", result.ChangedDeals),
		slog.Int("stores_seen", result.StoresSeen))
}

// stop cancels future ticks. A cycle already in flight is not
// interrupted.
func (p *poller) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	p.cron.Stop()
	p.running = false
	p.logger.Info("poller stopped")
}
