// Package db is the local sqlite store: scoped key/value storage for refresh
// tokens and cached users, plus the web frontend's browser sessions.
package db

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// connPragmas are applied by the driver to every pooled connection.
var connPragmas = []string{"busy_timeout(5000)", "foreign_keys(1)"}

// DB is the pastyears database handle.
type DB struct {
	*sql.DB
	now func() time.Time
}

// Open opens (or creates) the SQLite database at path in WAL mode and brings
// the schema up to date.
func Open(path string) (*DB, error) {
	params := url.Values{"_pragma": connPragmas}
	sqlDB, err := sql.Open("sqlite", "file:"+path+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	var mode string
	if err := sqlDB.QueryRow(`PRAGMA journal_mode = WAL;`).Scan(&mode); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if err := runMigrations(sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return &DB{DB: sqlDB, now: time.Now}, nil
}

// runMigrations applies the embedded migrations in file name order. They are
// idempotent and run on every open.
func runMigrations(sqlDB *sql.DB) error {
	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	for _, name := range names {
		content, err := migrationFiles.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		stmt := strings.TrimSpace(string(content))
		if stmt == "" {
			continue
		}
		if _, err := sqlDB.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}
