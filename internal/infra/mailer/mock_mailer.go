package mailer

import (
	"context"
	"log/slog"

	"dealradar/internal/domain/service"
)

// mockMailer logs what would be sent instead of sending it. It is the
// fallback whenever real credentials are missing.
type mockMailer struct {
	logger *slog.Logger
}

func newMockMailer(logger *slog.Logger) service.DealAlertSender {
	logger.Info("mock mailer configured, emails will be logged only")

	return &mockMailer{logger: logger}
}

func (m *mockMailer) SendDealAlert(ctx context.Context, email, displayName string, deals []service.DealAlert) error {
	names := make([]string, 0, min(len(deals), 5))
	for i, deal := range deals {
		if i == 5 {
			break
		}
		names = append(names, deal.Name)
	}

	m.logger.InfoContext(ctx, "MOCK EMAIL: new deal alert",
		slog.String("to", email),
		slog.String("recipient", displayName),
		slog.String("subject", newDealsSubject(len(deals))),
		slog.Any("deals", names))

	return nil
}

func (m *mockMailer) SendPriceDropAlert(ctx context.Context, email, displayName string, drop service.PriceDropAlert) error {
	m.logger.InfoContext(ctx, "MOCK EMAIL: price drop alert",
		slog.String("to", email),
		slog.String("recipient", displayName),
		slog.String("subject", priceDropSubject(drop)),
		slog.Float64("oldPrice", drop.OldPrice),
		slog.Float64("newPrice", drop.NewPrice))

	return nil
}
