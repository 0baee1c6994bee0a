package db

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	// A single connection keeps the in-memory database alive for the test
	d, err := sqlx.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	d.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestRunMigrations(t *testing.T) {
	d := newTestDB(t)
	require.NoError(t, RunMigrations(d.DB, "sqlite"))

	// Schema is in place and accepts rows
	_, err := d.Exec(`INSERT INTO images (id, owner_id, prompt, payload, content_type, created_at)
	                  VALUES ('img-1', 'u1', 'a red fox', x'00', 'image/png', CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	// Running again is a no-op
	require.NoError(t, RunMigrations(d.DB, "sqlite"))

	var count int
	require.NoError(t, d.Get(&count, "SELECT COUNT(*) FROM images"))
	assert.Equal(t, 1, count)
}

func TestMigrateDown(t *testing.T) {
	d := newTestDB(t)
	require.NoError(t, RunMigrations(d.DB, "sqlite"))
	require.NoError(t, MigrateDown(d.DB, "sqlite"))

	var count int
	err := d.Get(&count, "SELECT COUNT(*) FROM images")
	assert.Error(t, err, "images table should be gone after rollback")
}

func TestGetDialect(t *testing.T) {
	assert.Equal(t, "sqlite3", getDialect("sqlite"))
	assert.Equal(t, "postgres", getDialect("pgx"))
	assert.Equal(t, "mysql", getDialect("mysql"))
}
