package store

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artblossom/artblossom/internal/db"
	"github.com/artblossom/artblossom/internal/repository"
)

func newInlineStore(t *testing.T) (*InlineStore, *sqlx.DB) {
	t.Helper()

	d, err := sqlx.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	d.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = d.Close() })
	require.NoError(t, db.RunMigrations(d.DB, "sqlite"))

	return NewInlineStore(repository.NewImageRepository(d)), d
}

func TestInlineStoreSaveAssignsIDAndTimestamp(t *testing.T) {
	s, _ := newInlineStore(t)
	ctx := context.Background()

	id, err := s.Save(ctx, "u1", "a red fox", []byte{1, 2, 3}, "image/png")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	records, err := s.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, id, records[0].ID)
	assert.Equal(t, []byte{1, 2, 3}, records[0].Payload)
	assert.Equal(t, "image/png", records[0].ContentType)
	assert.False(t, records[0].CreatedAt.IsZero())
	assert.Empty(t, records[0].StoragePath)
}

func TestInlineStoreSaveTimestampsNonDecreasing(t *testing.T) {
	s, _ := newInlineStore(t)
	ctx := context.Background()

	for range 10 {
		_, err := s.Save(ctx, "u1", "prompt", []byte{1}, "image/png")
		require.NoError(t, err)
	}

	records, err := s.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, records, 10)

	// Listed newest first, so timestamps never increase down the slice
	for i := 1; i < len(records); i++ {
		assert.False(t, records[i-1].CreatedAt.Before(records[i].CreatedAt))
	}
}

func TestInlineStoreSaveUniqueIDs(t *testing.T) {
	s, _ := newInlineStore(t)
	ctx := context.Background()

	seen := map[string]bool{}
	for range 25 {
		id, err := s.Save(ctx, "u1", "prompt", []byte{1}, "image/png")
		require.NoError(t, err)
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestInlineStoreListByOwnerEmpty(t *testing.T) {
	s, _ := newInlineStore(t)

	records, err := s.ListByOwner(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestInlineStoreSaveFailsClosedWhenBackendDown(t *testing.T) {
	s, d := newInlineStore(t)
	ctx := context.Background()

	// Drop the table to simulate backend rejection
	_, err := d.Exec("DROP TABLE images")
	require.NoError(t, err)

	_, err = s.Save(ctx, "u1", "prompt", []byte{1}, "image/png")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistence)

	// Listing fails closed too, with no partial result
	records, err := s.ListByOwner(ctx, "u1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Nil(t, records)
}
