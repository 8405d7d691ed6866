package testutil

import (
	"database/sql"
	"testing"

	"github.com/chen-kiso-golan/TodoApp/internal/app/repositories"
)

// NewTestDB creates an in-memory SQLite database with the todo schema applied.
// The database is closed when the test completes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := repositories.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// NewTestRepo returns a SQLite-backed repository over a fresh in-memory database.
func NewTestRepo(t *testing.T) *repositories.SQLiteTodoRepo {
	t.Helper()
	return repositories.NewSQLiteTodoRepo(NewTestDB(t))
}
