package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/artblossom/artblossom/internal/model"
)

type ImageRepository interface {
	Create(ctx context.Context, record *model.ImageRecord) error
	ByOwner(ctx context.Context, ownerID string) ([]model.ImageRecord, error)
}

type imageRepository struct {
	db *sqlx.DB
}

func NewImageRepository(db *sqlx.DB) *imageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) Create(ctx context.Context, record *model.ImageRecord) error {
	query := `INSERT INTO images (id, owner_id, prompt, payload, content_type, storage_path, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.OwnerID,
		record.Prompt,
		record.Payload,
		record.ContentType,
		record.StoragePath,
		record.CreatedAt,
	)

	return err
}

// ByOwner returns every record for an owner, newest first. Ties on created_at
// are broken by id so repeated queries always produce the same order.
func (r *imageRepository) ByOwner(ctx context.Context, ownerID string) ([]model.ImageRecord, error) {
	records := []model.ImageRecord{}
	query := `SELECT * FROM images WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`

	err := r.db.SelectContext(ctx, &records, query, ownerID)
	if err != nil {
		return nil, err
	}

	return records, nil
}
