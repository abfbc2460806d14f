package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/teranga/client-registry/internal/core/domain"
	"github.com/teranga/client-registry/internal/core/ports"
)

// QRNotificationHandler reacts to a registration by encoding the client's
// telephone into a QR code and mailing it to the new account. Failures are
// terminal for the invocation: no retry, surfaced via logs and metrics.
type QRNotificationHandler struct {
	generator ports.QRCodeGenerator
	sender    ports.NotificationSender
	logger    zerolog.Logger
}

func NewQRNotificationHandler(generator ports.QRCodeGenerator, sender ports.NotificationSender, logger zerolog.Logger) *QRNotificationHandler {
	return &QRNotificationHandler{generator: generator, sender: sender, logger: logger}
}

func (h *QRNotificationHandler) Name() string { return "qr_notification" }

// Handle generates and mails the QR code. Registrations without an account
// are skipped: there is nobody to mail.
func (h *QRNotificationHandler) Handle(ctx context.Context, event domain.RegistrationEvent) error {
	if event.User == nil {
		h.logger.Debug().Str("client_id", event.Client.ID).Msg("registration has no account, skipping qr notification")
		return nil
	}

	png, err := h.generator.Encode(event.Client.Telephone)
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrQRGeneration, err)
	}

	mail := ports.QRCodeEmail{
		To:       event.User.Email,
		Nom:      event.User.Nom,
		Prenom:   event.User.Prenom,
		ImageURL: event.User.ImageURL,
		QRCode:   png,
	}
	if err := h.sender.SendQRCode(ctx, mail); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrNotification, err)
	}

	h.logger.Info().
		Str("client_id", event.Client.ID).
		Str("to", event.User.Email).
		Msg("qr code mailed")
	return nil
}
