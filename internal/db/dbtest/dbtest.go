// Package dbtest provides migrated throwaway databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/templui/postline/internal/db"
)

// New returns a sqlite database in t.TempDir() with all migrations applied.
// The database is closed when the test finishes.
func New(t *testing.T) *sqlx.DB {
	t.Helper()

	conn := filepath.Join(t.TempDir(), "data", "test.db") +
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(10000)"

	database, err := db.Init("sqlite", conn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(database) })

	require.NoError(t, db.RunMigrations(context.Background(), database.DB, "sqlite"))
	return database
}
