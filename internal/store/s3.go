package store

import (
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/google/uuid"

	"github.com/artblossom/artblossom/internal/model"
	"github.com/artblossom/artblossom/internal/repository"
	"github.com/artblossom/artblossom/internal/storage"
)

// S3Store is the reference strategy: image bytes go to the blob store under a
// generated key and the metadata row keeps only that key. Listing resolves a
// presigned URL per record.
type S3Store struct {
	images repository.ImageRepository
	blobs  storage.Storage
	clock  clock
}

func NewS3Store(images repository.ImageRepository, blobs storage.Storage) *S3Store {
	return &S3Store{images: images, blobs: blobs}
}

func (s *S3Store) Save(ctx context.Context, ownerID, prompt string, payload []byte, contentType string) (string, error) {
	id := uuid.New().String()
	key := path.Join("galleries", ownerID, id+extensionFor(contentType))

	err := s.blobs.Save(ctx, key, contentType, payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	record := &model.ImageRecord{
		ID:          id,
		OwnerID:     ownerID,
		Prompt:      prompt,
		ContentType: contentType,
		StoragePath: key,
		CreatedAt:   s.clock.now(),
	}

	err = s.images.Create(ctx, record)
	if err != nil {
		// The blob alone is unreachable without its metadata row; remove it so
		// a failed save leaves nothing visible.
		delErr := s.blobs.Delete(ctx, key)
		if delErr != nil {
			slog.Error("failed to delete blob during save cleanup", "error", delErr, "key", key)
		}
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return id, nil
}

func (s *S3Store) ListByOwner(ctx context.Context, ownerID string) ([]model.ImageRecord, error) {
	records, err := s.images.ByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	for i := range records {
		records[i].ImageURL = s.blobs.URL(ctx, records[i].StoragePath)
	}

	return records, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

var _ GalleryStore = (*S3Store)(nil)
