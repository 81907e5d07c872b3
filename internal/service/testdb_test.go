package service

import (
	"database/sql"
	"io"
	"log/slog"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/PBeekay/TesPITAI/internal"
	"github.com/PBeekay/TesPITAI/internal/repository"
)

// newTestDB opens an in-memory SQLite database with the schema applied.
func newTestDB(t *testing.T) (*sql.DB, *repository.Queries) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	// A second connection would see a different empty memory database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := internal.RunMigrations(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	return db, repository.New(db)
}

// testLogger discards all output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
