package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/artblossom/artblossom/internal/encoder"
	"github.com/artblossom/artblossom/internal/store"
)

// ErrValidation marks a save rejected before any I/O because a required field
// was missing or empty.
var ErrValidation = errors.New("validation failed")

// ImageService is the persistence gateway: the only surface the rest of the
// application uses to save generated images and read a user's gallery back.
type ImageService struct {
	encoder *encoder.Encoder
	store   store.GalleryStore
}

func NewImageService(enc *encoder.Encoder, galleryStore store.GalleryStore) *ImageService {
	return &ImageService{
		encoder: enc,
		store:   galleryStore,
	}
}

// SaveGeneratedImage normalizes imageRef (a data URI or http(s) URL) and
// persists the result under ownerID. Underlying failures propagate unchanged:
// encoder.ErrFetch when the source cannot be retrieved or decoded,
// store.ErrPersistence when the backend rejects the write. Nothing is written
// on any failure.
func (s *ImageService) SaveGeneratedImage(ctx context.Context, ownerID, prompt, imageRef string) (string, error) {
	if ownerID == "" {
		return "", fmt.Errorf("%w: ownerId is required", ErrValidation)
	}
	if prompt == "" {
		return "", fmt.Errorf("%w: prompt is required", ErrValidation)
	}
	if imageRef == "" {
		return "", fmt.Errorf("%w: image is required", ErrValidation)
	}

	payload, contentType, err := s.encoder.Normalize(ctx, imageRef)
	if err != nil {
		return "", err
	}

	return s.SaveImage(ctx, ownerID, prompt, payload, contentType)
}

// SaveImage persists an already-normalized payload. Used directly by the HTTP
// save endpoint, which receives binary image data rather than a reference.
func (s *ImageService) SaveImage(ctx context.Context, ownerID, prompt string, payload []byte, contentType string) (string, error) {
	if ownerID == "" {
		return "", fmt.Errorf("%w: ownerId is required", ErrValidation)
	}
	if prompt == "" {
		return "", fmt.Errorf("%w: prompt is required", ErrValidation)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("%w: image is required", ErrValidation)
	}
	if contentType == "" {
		contentType = "image/png"
	}

	id, err := s.store.Save(ctx, ownerID, prompt, payload, contentType)
	if err != nil {
		return "", err
	}

	slog.Info("image saved", "id", id, "owner_id", ownerID, "bytes", len(payload), "content_type", contentType)
	return id, nil
}

// LoadGallery returns the owner's saved images as client-consumable entries,
// newest first. An owner with no images gets an empty slice, not an error.
func (s *ImageService) LoadGallery(ctx context.Context, ownerID string) ([]GalleryEntry, error) {
	records, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return ToGalleryView(records), nil
}
