package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Storage is the key/value view of one scope. It satisfies auth.Store.
type Storage struct {
	db    *DB
	scope string
}

// Scope returns the storage for name. Scopes need no creation.
func (db *DB) Scope(name string) *Storage {
	return &Storage{db: db, scope: name}
}

// Name returns the scope name.
func (s *Storage) Name() string { return s.scope }

// Get returns the value stored under key.
func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM storage WHERE scope = ? AND key = ?`,
		s.scope, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get %s/%s: %w", s.scope, key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO storage (scope, key, value) VALUES (?, ?, ?)
		 ON CONFLICT(scope, key) DO UPDATE SET
		   value=excluded.value,
		   updated_at=CURRENT_TIMESTAMP`,
		s.scope, key, value,
	)
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", s.scope, key, err)
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (s *Storage) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM storage WHERE scope = ? AND key = ?`, s.scope, key); err != nil {
		return fmt.Errorf("remove %s/%s: %w", s.scope, key, err)
	}
	return nil
}

// ListKeys returns the entries of scope ordered by key.
func (db *DB) ListKeys(ctx context.Context, scope string) ([]Entry, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT key, value, updated_at FROM storage WHERE scope = ? ORDER BY key`,
		scope,
	)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.Value, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// ClearScope removes every key of scope and reports how many were removed.
func (db *DB) ClearScope(ctx context.Context, scope string) (int64, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM storage WHERE scope = ?`, scope)
	if err != nil {
		return 0, fmt.Errorf("clear scope %s: %w", scope, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
