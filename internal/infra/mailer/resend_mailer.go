package mailer

import (
	"context"
	"log/slog"
	"net/http"

	"dealradar/config"
	"dealradar/internal/domain/service"
	"dealradar/internal/errors"

	"github.com/go-resty/resty/v2"
)

const resendEndpoint = "https://api.resend.com/emails"

// resendMailer delivers alerts through the Resend REST API.
type resendMailer struct {
	rest   *resty.Client
	from   string
	logger *slog.Logger
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func newResendMailer(cfg *config.MailerConfig, logger *slog.Logger) service.DealAlertSender {
	rest := resty.New().
		SetBaseURL(resendEndpoint).
		SetAuthToken(cfg.Resend.APIKey).
		SetHeader("Content-Type", "application/json")

	return &resendMailer{
		rest:   rest,
		from:   cfg.From,
		logger: logger,
	}
}

func (m *resendMailer) SendDealAlert(ctx context.Context, email, displayName string, deals []service.DealAlert) error {
	html, err := renderNewDeals(displayName, deals)
	if err != nil {
		return err
	}

	return m.send(ctx, email, newDealsSubject(len(deals)), html)
}

func (m *resendMailer) SendPriceDropAlert(ctx context.Context, email, displayName string, drop service.PriceDropAlert) error {
	html, err := renderPriceDrop(displayName, drop)
	if err != nil {
		return err
	}

	return m.send(ctx, email, priceDropSubject(drop), html)
}

func (m *resendMailer) send(ctx context.Context, to, subject, html string) error {
	resp, err := m.rest.R().
		SetContext(ctx).
		SetBody(resendRequest{
			From:    m.from,
			To:      []string{to},
			Subject: subject,
			HTML:    html,
		}).
		Post("")
	if err != nil {
		return errors.Wrapf(err, "send Resend mail to %s", to)
	}

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return errors.Errorf("Resend API returned status %d for %s", resp.StatusCode(), to)
	}

	m.logger.InfoContext(ctx, "Resend email sent", slog.String("to", to), slog.String("subject", subject))

	return nil
}
