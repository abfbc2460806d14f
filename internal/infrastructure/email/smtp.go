package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	mail "github.com/go-mail/mail"
	"github.com/rs/zerolog"

	"github.com/teranga/client-registry/internal/core/ports"
)

const defaultSendTimeout = 15 * time.Second

// Config captures SMTP transport settings.
type Config struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
	// TLSMode is one of "auto" (STARTTLS when offered), "ssl", "none".
	TLSMode string
	// Timeout bounds a single dial-and-send round trip.
	Timeout time.Duration
}

// SMTPSender implements ports.NotificationSender over SMTP.
type SMTPSender struct {
	cfg    Config
	logger zerolog.Logger
}

func NewSMTPSender(cfg Config, logger zerolog.Logger) *SMTPSender {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultSendTimeout
	}
	return &SMTPSender{cfg: cfg, logger: logger}
}

// SendQRCode renders the registration card and delivers it as an HTML mail.
// The send is bounded by the configured timeout; the caller's context is
// checked before dialing since the SMTP client itself is not context-aware.
func (s *SMTPSender) SendQRCode(ctx context.Context, email ports.QRCodeEmail) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	body, err := renderQRCard(email.Nom, email.Prenom, email.ImageURL, email.QRCode)
	if err != nil {
		return err
	}

	m := mail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", email.To)
	m.SetHeader("Subject", "Votre QR Code Client")
	m.SetBody("text/html", body)

	d := mail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	d.Timeout = s.cfg.Timeout
	d.TLSConfig = &tls.Config{ServerName: s.cfg.Host}
	switch s.cfg.TLSMode {
	case "ssl":
		d.SSL = true
	case "none":
		d.StartTLSPolicy = mail.NoStartTLS
	default:
		// "auto": STARTTLS is negotiated when the server offers it.
	}

	if err := d.DialAndSend(m); err != nil {
		s.logger.Error().Err(err).Str("to", email.To).Msg("smtp send failed")
		return fmt.Errorf("smtp send: %w", err)
	}

	s.logger.Debug().Str("to", email.To).Msg("registration mail delivered")
	return nil
}
