// Package dbtest opens throwaway databases for package tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/textilsur/gestiontextil/desktop/internal/database"
)

// New returns a freshly initialized database in a temp dir, closed on cleanup
func New(t testing.TB) *database.DB {
	t.Helper()
	db, err := database.OpenAndInit(context.Background(), filepath.Join(t.TempDir(), "test.db"), 2000)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// NewEmpty returns an open database with no schema at all
func NewEmpty(t testing.TB) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "empty.db"), 2000)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Exec runs raw statements, failing the test on error
func Exec(t testing.TB, db *database.DB, stmts ...string) {
	t.Helper()
	for _, s := range stmts {
		if _, err := db.GetConn().Exec(s); err != nil {
			t.Fatalf("exec %q: %v", s, err)
		}
	}
}
