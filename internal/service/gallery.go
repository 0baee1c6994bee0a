package service

import (
	"encoding/base64"
	"fmt"
	"sort"
	"time"

	"github.com/artblossom/artblossom/internal/model"
)

// GalleryEntry is the client-consumable view of a stored image. ImageURL is
// either an inlined data URI (inline strategy) or a resolvable URL (reference
// strategy); the client never sees which strategy produced it.
type GalleryEntry struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"userId"`
	Prompt    string    `json:"prompt"`
	ImageURL  string    `json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToGalleryView converts stored records into ordered gallery entries:
// createdAt descending, ties broken by id descending so the order is total
// and stable across repeated calls. The input slice is not modified.
func ToGalleryView(records []model.ImageRecord) []GalleryEntry {
	sorted := make([]model.ImageRecord, len(records))
	copy(sorted, records)

	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].ID > sorted[j].ID
	})

	entries := make([]GalleryEntry, 0, len(sorted))
	for _, record := range sorted {
		entries = append(entries, GalleryEntry{
			ID:        record.ID,
			OwnerID:   record.OwnerID,
			Prompt:    record.Prompt,
			ImageURL:  imageURL(record),
			CreatedAt: record.CreatedAt,
		})
	}

	return entries
}

func imageURL(record model.ImageRecord) string {
	if record.ImageURL != "" {
		return record.ImageURL
	}
	return fmt.Sprintf("data:%s;base64,%s", record.ContentType, base64.StdEncoding.EncodeToString(record.Payload))
}
