// Package dbtest opens migrated in-memory databases for package tests.
package dbtest

import (
	"testing"

	"github.com/lysyi3m/news-importer/app/database"
)

// New returns an empty, fully migrated in-memory database closed at test cleanup
func New(t testing.TB) *database.DB {
	t.Helper()

	db, err := database.NewConnection(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := database.RunMigrations(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}
