package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateSession starts a new browser session with a random id.
func (db *DB) CreateSession(ctx context.Context) (Session, error) {
	now := db.now().Unix()
	s := Session{ID: uuid.NewString(), CreatedAt: time.Unix(now, 0), LastSeen: time.Unix(now, 0)}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO session (id, created_at, last_seen) VALUES (?, ?, ?)`,
		s.ID, now, now,
	); err != nil {
		return Session{}, fmt.Errorf("insert session: %w", err)
	}
	return s, nil
}

// GetSession returns a session by id.
func (db *DB) GetSession(ctx context.Context, id string) (Session, bool, error) {
	var created, lastSeen int64
	err := db.QueryRowContext(ctx,
		`SELECT created_at, last_seen FROM session WHERE id = ?`, id,
	).Scan(&created, &lastSeen)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, false, nil
		}
		return Session{}, false, fmt.Errorf("get session: %w", err)
	}
	return Session{ID: id, CreatedAt: time.Unix(created, 0), LastSeen: time.Unix(lastSeen, 0)}, true, nil
}

// TouchSession records activity on a session.
func (db *DB) TouchSession(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, `UPDATE session SET last_seen = ? WHERE id = ?`, db.now().Unix(), id)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteSession removes a session together with its storage scope.
func (db *DB) DeleteSession(ctx context.Context, id string) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.ClearScope(ctx, SessionScope(id)); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.DeleteSession(ctx, id); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete session commit: %w", err)
	}
	return nil
}

// PurgeSessions deletes sessions idle since before and returns their ids.
func (db *DB) PurgeSessions(ctx context.Context, before time.Time) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT id FROM session WHERE last_seen < ? ORDER BY id`, before.Unix())
	if err != nil {
		return nil, fmt.Errorf("list idle sessions: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, err := tx.ClearScope(ctx, SessionScope(id)); err != nil {
			tx.Rollback()
			return nil, err
		}
		if _, err := tx.DeleteSession(ctx, id); err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("purge sessions commit: %w", err)
	}
	return ids, nil
}
