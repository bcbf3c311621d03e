// Package migratetest opens migrated in-memory SQLite databases for tests.
package migratetest

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tkasparek/tkasparek/internal/db"
	"github.com/tkasparek/tkasparek/internal/migrate"
)

var seq atomic.Int64

// OpenSQLite returns a fresh, fully migrated in-memory database that is
// closed when the test ends. Every call gets its own database.
func OpenSQLite(t testing.TB) *sql.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:rain_test_%d?mode=memory&cache=shared&_foreign_keys=on", seq.Add(1))
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// one connection keeps the in-memory database alive for the whole test
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() {
		if err := conn.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})
	if err := migrate.Run(context.Background(), conn, db.SQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

// Exec runs each statement and fails the test on the first error.
func Exec(t testing.TB, conn *sql.DB, stmts ...string) {
	t.Helper()
	for _, s := range stmts {
		if _, err := conn.Exec(s); err != nil {
			t.Fatalf("%s: %v", s, err)
		}
	}
}
