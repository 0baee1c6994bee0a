package model

import (
	"time"
)

// ImageRecord is the persisted gallery entity. Records are append-only: once
// written they are never updated, and nothing in the application deletes them.
//
// Exactly one of Payload and StoragePath is populated, depending on the
// configured storage strategy: inline keeps the image bytes in the row,
// reference keeps them in the blob store and stores only the key here.
type ImageRecord struct {
	ID          string    `db:"id"`
	OwnerID     string    `db:"owner_id"`
	Prompt      string    `db:"prompt"`
	Payload     []byte    `db:"payload"`
	ContentType string    `db:"content_type"`
	StoragePath string    `db:"storage_path"`
	CreatedAt   time.Time `db:"created_at"`

	// ImageURL is a transient resolved reference (reference strategy only),
	// filled in by the store at listing time. Never persisted.
	ImageURL string `db:"-"`
}
