package test

import (
	"log"
	"testing"

	"devdash/internal/adapter/database"
	"devdash/internal/adapter/database/sqlite"
	"devdash/pkg/config"
)

// InitTestDB opens a private in-memory SQLite database with the
// migrations applied.
func InitTestDB() *database.DB {
	db, err := sqlite.Open(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})

	if err != nil {
		log.Fatal(err)
	}

	return db
}

// SetupTestDB is InitTestDB closed automatically at the end of t.
func SetupTestDB(t testing.TB) *database.DB {
	t.Helper()

	db := InitTestDB()
	t.Cleanup(func() { db.Close() })

	return db
}

// CleanDB hard-deletes every row from the application tables.
func CleanDB(t testing.TB, db *database.DB) {
	t.Helper()

	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT IN ('sqlite_sequence', 'schema_migrations')")
	if err != nil {
		t.Fatalf("Failed to query tables: %v", err)
	}

	var tables []string
	for rows.Next() {
		var table string
		if err := rows.Scan(&table); err != nil {
			rows.Close()
			t.Fatalf("Failed to scan table name: %v", err)
		}
		tables = append(tables, table)
	}
	rows.Close()

	for _, table := range tables {
		if _, err := db.Exec("DELETE FROM " + table); err != nil {
			t.Fatalf("Failed to clean table %s: %v", table, err)
		}
	}
}
