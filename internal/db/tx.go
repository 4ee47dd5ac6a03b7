package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Tx wraps sql.Tx to reuse DB helpers within a transaction.
type Tx struct {
	*sql.Tx
}

// Begin starts a transaction on the DB.
func (db *DB) Begin(ctx context.Context) (*Tx, error) {
	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &Tx{Tx: tx}, nil
}

// ClearScope removes every key of scope within a transaction.
func (tx *Tx) ClearScope(ctx context.Context, scope string) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM storage WHERE scope = ?`, scope)
	if err != nil {
		return 0, fmt.Errorf("clear scope %s: %w", scope, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// DeleteSession removes a session row within a transaction.
func (tx *Tx) DeleteSession(ctx context.Context, id string) (bool, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM session WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
