// Package store provides durable, owner-keyed persistence of generated images
// behind a single contract with two interchangeable strategies: inline (image
// bytes live in the database row) and reference (bytes live in a blob store,
// the row keeps only the key). A deployment runs exactly one strategy.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/artblossom/artblossom/internal/model"
)

// ErrPersistence marks a read or write the storage backend rejected. For
// saves, no partial record is visible afterwards; for listings, no partial
// list is returned.
var ErrPersistence = errors.New("storage backend failure")

// GalleryStore is the persistence contract the gateway depends on. Save is
// all-or-nothing; ListByOwner returns a best-effort snapshot, newest first,
// and an empty slice (not an error) for owners with no records.
type GalleryStore interface {
	Save(ctx context.Context, ownerID, prompt string, payload []byte, contentType string) (string, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.ImageRecord, error)
}

// clock hands out record timestamps that never go backwards within a store
// instance, even if the wall clock does. Timestamps are truncated to
// millisecond precision so equal values (broken by id) stay representable in
// ISO-8601 output.
type clock struct {
	mu   sync.Mutex
	last time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	ts := time.Now().UTC().Truncate(time.Millisecond)
	if ts.Before(c.last) {
		ts = c.last
	}
	c.last = ts
	return ts
}
