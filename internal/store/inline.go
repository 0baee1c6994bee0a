package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/artblossom/artblossom/internal/model"
	"github.com/artblossom/artblossom/internal/repository"
)

// InlineStore persists the image bytes directly in the metadata row. This is
// the default strategy: a single insert makes the whole record durable, so
// save atomicity comes for free from the database.
type InlineStore struct {
	images repository.ImageRepository
	clock  clock
}

func NewInlineStore(images repository.ImageRepository) *InlineStore {
	return &InlineStore{images: images}
}

func (s *InlineStore) Save(ctx context.Context, ownerID, prompt string, payload []byte, contentType string) (string, error) {
	record := &model.ImageRecord{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Prompt:      prompt,
		Payload:     payload,
		ContentType: contentType,
		CreatedAt:   s.clock.now(),
	}

	err := s.images.Create(ctx, record)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return record.ID, nil
}

func (s *InlineStore) ListByOwner(ctx context.Context, ownerID string) ([]model.ImageRecord, error) {
	records, err := s.images.ByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return records, nil
}

var _ GalleryStore = (*InlineStore)(nil)
