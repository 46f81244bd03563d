// Package testinfra holds helpers shared by package tests.
package testinfra

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-bookshelf/pkg/database"
	"github.com/ovaphlow/pitchfork/service-bookshelf/pkg/utilities"
)

// SQLiteDB opens a fresh file-backed SQLite database under t.TempDir().
// Tables are not created; callers run the repos' EnsureTable.
func SQLiteDB(t testing.TB) *sqlx.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_txlock=immediate", filepath.Join(t.TempDir(), "test.db"))
	sqlDB, err := database.Connect(database.Config{Driver: database.DriverSQLite, DSN: dsn, MaxConns: 4})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db := sqlx.NewDb(sqlDB, database.DriverSQLite)
	t.Cleanup(func() { db.Close() })
	return db
}

// IDs returns a snowflake generator for tests.
func IDs(t testing.TB) *utilities.IDGenerator {
	t.Helper()
	g, err := utilities.NewIDGenerator(1)
	if err != nil {
		t.Fatalf("id generator: %v", err)
	}
	return g
}
