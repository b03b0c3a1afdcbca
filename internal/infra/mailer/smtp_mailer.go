package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"dealradar/config"
	"dealradar/internal/domain/service"
	"dealradar/internal/errors"
)

// smtpMailer delivers alerts through a plain SMTP relay with STARTTLS
// authentication, e.g. Gmail with an app password.
type smtpMailer struct {
	addr     string
	from     string
	username string
	password string
	host     string
	logger   *slog.Logger

	// sendMail is swappable for tests.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func newSMTPMailer(cfg *config.MailerConfig, logger *slog.Logger) service.DealAlertSender {
	from := cfg.From
	if from == "" {
		from = cfg.SMTP.Username
	}

	return &smtpMailer{
		addr:     fmt.Sprintf("%s:%d", cfg.SMTP.Host, cfg.SMTP.Port),
		from:     from,
		username: cfg.SMTP.Username,
		password: cfg.SMTP.Password,
		host:     cfg.SMTP.Host,
		logger:   logger,
		sendMail: smtp.SendMail,
	}
}

func (m *smtpMailer) SendDealAlert(ctx context.Context, email, displayName string, deals []service.DealAlert) error {
	html, err := renderNewDeals(displayName, deals)
	if err != nil {
		return err
	}

	return m.send(ctx, email, newDealsSubject(len(deals)), html)
}

func (m *smtpMailer) SendPriceDropAlert(ctx context.Context, email, displayName string, drop service.PriceDropAlert) error {
	html, err := renderPriceDrop(displayName, drop)
	if err != nil {
		return err
	}

	return m.send(ctx, email, priceDropSubject(drop), html)
}

func (m *smtpMailer) send(ctx context.Context, to, subject, html string) error {
	var msg strings.Builder
	msg.WriteString("From: " + m.from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(html)

	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	if err := m.sendMail(m.addr, auth, m.from, []string{to}, []byte(msg.String())); err != nil {
		return errors.Wrapf(err, "send SMTP mail to %s", to)
	}

	m.logger.InfoContext(ctx, "SMTP email sent", slog.String("to", to), slog.String("subject", subject))

	return nil
}
