package main

import (
	"context"
	"log/slog"
	"os"

	"dealradar/config"
	"dealradar/internal/delivery"
	"dealradar/internal/delivery/http"
	"dealradar/internal/delivery/http/router/handler"
	"dealradar/internal/delivery/poller"
	"dealradar/internal/delivery/ws"
	"dealradar/internal/domain/service"
	logs "dealradar/internal/infra/log"
	"dealradar/internal/infra/mailer"
	"dealradar/internal/infra/persistence/postgres"
	"dealradar/internal/infra/pubsub"
	"dealradar/internal/infra/source"
	"dealradar/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectUsecase(),
		injectHandler(),
		injectDelivery(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Options(
		fx.Provide(
			config.New,
			logs.New,
			context.Background,
			postgres.New,
			newDealSource,
			newDealAlertSender,
		),
		pubsub.Module,
	)
}

// newDealSource creates the upstream deals API client with dependency injection
func newDealSource(cfg *config.Config, logger *slog.Logger) service.DealSource {
	return source.New(cfg.Source, logger)
}

// newDealAlertSender creates the outbound email transport with dependency injection
func newDealAlertSender(cfg *config.Config, logger *slog.Logger) service.DealAlertSender {
	return mailer.New(cfg.Mailer, logger)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewStoreRepository,
			postgres.NewProductRepository,
			postgres.NewPriceHistoryRepository,
			postgres.NewPreferenceRepository,
			postgres.NewTransactionManager,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewReconcileService,
			impl.NewDispatchService,
			impl.NewIngestService,
			impl.NewCatalogService,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewIngestHandler,
			handler.NewCatalogHandler,
			handler.NewLiveHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			ws.NewHub,
			func(hub *ws.Hub) service.Broadcaster { return hub },
		),
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
			fx.Annotate(
				func(hub *ws.Hub) delivery.Delivery { return hub },
				fx.ResultTags(`group:"deliveries"`),
			),
			fx.Annotate(
				poller.NewPoller,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
