package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const defaultUploadTimeout = 30 * time.Second

// CloudinaryStore implements ports.ImageStore on the Cloudinary upload API.
type CloudinaryStore struct {
	cld     *cloudinary.Cloudinary
	folder  string
	timeout time.Duration
}

// NewCloudinaryStore builds a store from a cloudinary:// credentials URL.
// Uploads land in folder; each call is bounded by timeout.
func NewCloudinaryStore(url, folder string, timeout time.Duration) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultUploadTimeout
	}
	return &CloudinaryStore{cld: cld, folder: folder, timeout: timeout}, nil
}

// Upload pushes image bytes to Cloudinary and returns the stable HTTPS URL.
func (s *CloudinaryStore) Upload(ctx context.Context, name string, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:   s.folder,
		PublicID: name,
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %w", errors.New(resp.Error.Message))
	}
	return resp.SecureURL, nil
}
