package ports

import (
	"context"

	"github.com/teranga/client-registry/internal/core/domain"
)

// QRCodeGenerator encodes an arbitrary string into PNG bytes at a fixed size.
type QRCodeGenerator interface {
	Encode(content string) ([]byte, error)
}

// QRCodeEmail is the payload rendered into the registration mail: the
// recipient, their profile, and the raw QR image to inline.
type QRCodeEmail struct {
	To       string
	Nom      string
	Prenom   string
	ImageURL string
	QRCode   []byte
}

// NotificationSender delivers the templated registration mail.
type NotificationSender interface {
	SendQRCode(ctx context.Context, email QRCodeEmail) error
}

// ImageStore uploads binary image data to a remote object store and returns
// a stable retrieval URL.
type ImageStore interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
}

// EventPublisher hands a committed registration off to the subscribed
// handlers. Publication is fire-and-forget from the caller's point of view.
type EventPublisher interface {
	Publish(event domain.RegistrationEvent)
}

// RegistrationHandler consumes registration events. Handlers run
// independently of one another: a failure is reported, never propagated.
type RegistrationHandler interface {
	Name() string
	Handle(ctx context.Context, event domain.RegistrationEvent) error
}

// PublishGuard prevents a registration event from being published more than
// once for the same client.
type PublishGuard interface {
	AlreadyPublished(ctx context.Context, clientID string) (bool, error)
	MarkPublished(ctx context.Context, clientID string) error
}
