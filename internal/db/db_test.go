package db

import (
	"path/filepath"
	"testing"

	"github.com/sloppy/pastyears/internal/testutil"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(testutil.TempDir(t), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrationsCreateSchema(t *testing.T) {
	db := openTestDB(t)

	tables := mustListStrings(t, db, `SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%';`)
	for _, name := range []string{"storage", "session"} {
		if _, ok := tables[name]; !ok {
			t.Fatalf("expected table %q to exist, got tables: %v", name, keys(tables))
		}
	}

	indexes := mustListStrings(t, db, `SELECT name FROM sqlite_master WHERE type='index' AND name NOT LIKE 'sqlite_%';`)
	if _, ok := indexes["idx_session_last_seen"]; !ok {
		t.Fatalf("expected index idx_session_last_seen, got indexes: %v", keys(indexes))
	}
}

func TestMigrationsAreRerunnable(t *testing.T) {
	db := openTestDB(t)
	if err := runMigrations(db.DB); err != nil {
		t.Fatalf("re-run migrations: %v", err)
	}
}

func TestOpenEnablesWALAndAllowsConcurrentOpens(t *testing.T) {
	dir := testutil.TempDir(t)
	path := filepath.Join(dir, "test.db")

	db1, err := Open(path)
	if err != nil {
		t.Fatalf("open db1: %v", err)
	}
	defer db1.Close()

	if mode := pragmaString(t, db1, "PRAGMA journal_mode;"); mode != "wal" {
		t.Fatalf("expected journal_mode wal, got %q", mode)
	}

	if fk := pragmaString(t, db1, "PRAGMA foreign_keys;"); fk != "1" {
		t.Fatalf("expected foreign_keys on, got %q", fk)
	}
	if timeout := pragmaString(t, db1, "PRAGMA busy_timeout;"); timeout != "5000" {
		t.Fatalf("expected busy_timeout 5000, got %q", timeout)
	}

	if err := db1.Scope("cli").Set(t.Context(), "a", "1"); err != nil {
		t.Fatalf("set via db1: %v", err)
	}

	db2, err := Open(path)
	if err != nil {
		t.Fatalf("open db2: %v", err)
	}
	defer db2.Close()

	if err := db2.Scope("cli").Set(t.Context(), "b", "2"); err != nil {
		t.Fatalf("set via db2: %v", err)
	}

	entries, err := db1.ListKeys(t.Context(), "cli")
	if err != nil {
		t.Fatalf("list keys: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
}

// Helpers

func mustListStrings(t *testing.T, db *DB, query string) map[string]struct{} {
	t.Helper()
	rows, err := db.Query(query)
	if err != nil {
		t.Fatalf("query %q: %v", query, err)
	}
	defer rows.Close()

	result := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan name: %v", err)
		}
		result[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows err: %v", err)
	}
	return result
}

func pragmaString(t *testing.T, db *DB, pragma string) string {
	t.Helper()
	var val string
	if err := db.QueryRow(pragma).Scan(&val); err != nil {
		t.Fatalf("pragma query %q: %v", pragma, err)
	}
	return val
}

func keys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
