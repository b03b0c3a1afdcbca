// Package mailer implements the outbound email transports for deal alerts.
// The provider is chosen by configuration; missing credentials degrade to the
// mock transport so a dev environment never needs real email credentials.
package mailer

import (
	"log/slog"

	"dealradar/config"
	"dealradar/internal/domain/service"
)

const (
	providerSMTP   = "smtp"
	providerResend = "resend"
	providerMock   = "mock"
)

// New selects and constructs the configured email transport.
func New(cfg *config.MailerConfig, logger *slog.Logger) service.DealAlertSender {
	if cfg == nil {
		return newMockMailer(logger)
	}

	switch cfg.Provider {
	case providerSMTP:
		if cfg.SMTP.Host == "" || cfg.SMTP.Username == "" || cfg.SMTP.Password == "" {
			logger.Warn("SMTP credentials not configured, falling back to mock mailer")

			return newMockMailer(logger)
		}

		logger.Info("SMTP mailer configured",
			slog.String("host", cfg.SMTP.Host),
			slog.String("username", cfg.SMTP.Username))

		return newSMTPMailer(cfg, logger)
	case providerResend:
		if cfg.Resend.APIKey == "" {
			logger.Warn("Resend API key not configured, falling back to mock mailer")

			return newMockMailer(logger)
		}

		logger.Info("Resend mailer configured")

		return newResendMailer(cfg, logger)
	case providerMock, "":
		return newMockMailer(logger)
	default:
		logger.Warn("unknown mailer provider, falling back to mock mailer",
			slog.String("provider", cfg.Provider))

		return newMockMailer(logger)
	}
}
