package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/teranga/client-registry/internal/core/domain"
	"github.com/teranga/client-registry/internal/core/ports"
)

// ImageUploadHandler reacts to a registration by uploading the supplied
// profile image and persisting its URL on the already-committed user row.
// The image travels on the event itself; this handler never inspects
// request state.
type ImageUploadHandler struct {
	store  ports.ImageStore
	repo   ports.ClientRepository
	logger zerolog.Logger
}

func NewImageUploadHandler(store ports.ImageStore, repo ports.ClientRepository, logger zerolog.Logger) *ImageUploadHandler {
	return &ImageUploadHandler{store: store, repo: repo, logger: logger}
}

func (h *ImageUploadHandler) Name() string { return "image_upload" }

// Handle uploads the event's image, if any. A registration without an image
// or without an account is a no-op, not an error. The stored object is named
// after the user id so each account owns exactly one remote asset and two
// registrations can never overwrite each other's image.
func (h *ImageUploadHandler) Handle(ctx context.Context, event domain.RegistrationEvent) error {
	if event.Image == nil || len(event.Image.Data) == 0 || event.User == nil {
		return nil
	}

	url, err := h.store.Upload(ctx, "user_"+event.User.ID, event.Image.Data)
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrImageUpload, err)
	}

	if err := h.repo.SetUserImageURL(ctx, event.User.ID, url); err != nil {
		return fmt.Errorf("%w: persist url: %s", domain.ErrImageUpload, err)
	}

	h.logger.Info().
		Str("client_id", event.Client.ID).
		Str("user_id", event.User.ID).
		Str("url", url).
		Msg("profile image uploaded")
	return nil
}
