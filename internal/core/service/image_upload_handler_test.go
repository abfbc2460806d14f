package service

import (
	"context"
	"errors"
	"testing"

	"github.com/teranga/client-registry/internal/core/domain"
)

type stubStore struct {
	uploads []string // object names
	err     error
}

// Upload derives the URL from the object name like a real store would, so
// tests can observe which remote asset a user's url points at.
func (s *stubStore) Upload(_ context.Context, name string, _ []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.uploads = append(s.uploads, name)
	return "https://cdn.example/" + name + ".png", nil
}

func imageEvent() domain.RegistrationEvent {
	event := registrationEvent()
	event.Image = &domain.ImagePayload{Name: "profile", Data: []byte{1, 2, 3}}
	return event
}

func TestImageUpload_PersistsURL(t *testing.T) {
	repo := newStubRepo()
	repo.users["u1"] = &domain.User{ID: "u1", ClientID: "c1"}
	store := &stubStore{}
	h := NewImageUploadHandler(store, repo, discardLogger)

	if err := h.Handle(context.Background(), imageEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.uploads) != 1 || store.uploads[0] != "user_u1" {
		t.Errorf("object must be named after the user, got %v", store.uploads)
	}
	if repo.users["u1"].ImageURL != "https://cdn.example/user_u1.png" {
		t.Errorf("image url not persisted: %q", repo.users["u1"].ImageURL)
	}
}

func TestImageUpload_DistinctUsersDistinctAssets(t *testing.T) {
	repo := newStubRepo()
	repo.users["u1"] = &domain.User{ID: "u1", ClientID: "c1"}
	repo.users["u2"] = &domain.User{ID: "u2", ClientID: "c2"}
	store := &stubStore{}
	h := NewImageUploadHandler(store, repo, discardLogger)

	first := imageEvent()
	second := domain.RegistrationEvent{
		Client: domain.Client{ID: "c2"},
		User:   &domain.User{ID: "u2"},
		Image:  &domain.ImagePayload{Name: "profile", Data: []byte{4, 5, 6}},
	}

	if err := h.Handle(context.Background(), first); err != nil {
		t.Fatalf("first upload failed: %v", err)
	}
	if err := h.Handle(context.Background(), second); err != nil {
		t.Fatalf("second upload failed: %v", err)
	}

	if store.uploads[0] == store.uploads[1] {
		t.Fatalf("two users must not share a remote asset, both uploaded %q", store.uploads[0])
	}
	if repo.users["u1"].ImageURL == repo.users["u2"].ImageURL {
		t.Fatalf("users point at the same asset: %q", repo.users["u1"].ImageURL)
	}
}

func TestImageUpload_NoImageIsNoop(t *testing.T) {
	repo := newStubRepo()
	store := &stubStore{}
	h := NewImageUploadHandler(store, repo, discardLogger)

	event := registrationEvent()
	event.Image = nil
	if err := h.Handle(context.Background(), event); err != nil {
		t.Fatalf("missing image must be a no-op, got %v", err)
	}

	event.Image = &domain.ImagePayload{Name: "empty"}
	if err := h.Handle(context.Background(), event); err != nil {
		t.Fatalf("empty image must be a no-op, got %v", err)
	}

	if len(store.uploads) != 0 {
		t.Error("store must not be called without image data")
	}
}

func TestImageUpload_NoAccountIsNoop(t *testing.T) {
	repo := newStubRepo()
	store := &stubStore{}
	h := NewImageUploadHandler(store, repo, discardLogger)

	event := imageEvent()
	event.User = nil
	if err := h.Handle(context.Background(), event); err != nil {
		t.Fatalf("missing account must be a no-op, got %v", err)
	}
	if len(store.uploads) != 0 {
		t.Error("store must not be called without an account")
	}
}

func TestImageUpload_StoreFailure(t *testing.T) {
	repo := newStubRepo()
	store := &stubStore{err: errors.New("upload boom")}
	h := NewImageUploadHandler(store, repo, discardLogger)

	err := h.Handle(context.Background(), imageEvent())
	if !errors.Is(err, domain.ErrImageUpload) {
		t.Fatalf("expected ErrImageUpload, got %v", err)
	}
}

func TestImageUpload_PersistFailure(t *testing.T) {
	repo := newStubRepo() // user u1 absent, SetUserImageURL fails
	store := &stubStore{}
	h := NewImageUploadHandler(store, repo, discardLogger)

	err := h.Handle(context.Background(), imageEvent())
	if !errors.Is(err, domain.ErrImageUpload) {
		t.Fatalf("expected ErrImageUpload, got %v", err)
	}
}
