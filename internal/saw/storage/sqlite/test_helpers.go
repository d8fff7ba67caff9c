package sqlite

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// setupRunStoreTestDB creates a test database with the schema applied from
// the real migration file, so test DDL can never drift from production DDL.
func setupRunStoreTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("failed to execute %q: %v", pragma, err)
		}
	}

	// From internal/saw/storage/sqlite the migrations live four levels up.
	schemaPath := filepath.Join("..", "..", "..", "..", "db", "migrations", "0001_create_runs.up.sql")
	schemaSQL, err := os.ReadFile(schemaPath)
	if err != nil {
		t.Fatalf("failed to read migration SQL: %v", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	return db
}
