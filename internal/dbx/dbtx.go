// Package dbx holds the database helpers shared by the local stores.
package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// DBTX is what repositories need from database/sql. Both *sql.DB and
// *sql.Tx satisfy it, so a repository can run inside or outside a
// transaction unchanged.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// InTx runs fn in a transaction and returns its result. The transaction is
// committed when fn succeeds and rolled back when it fails or panics; a
// panic is re-raised after the rollback.
//
//	key, err := dbx.InTx(ctx, db, func(ctx context.Context, tx dbx.DBTX) ([]byte, error) {
//	    return unlockWith(metadata.NewSQLiteRepository(tx))
//	})
func InTx[T any](ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx DBTX) (T, error)) (result T, err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("begin tx: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
	}()

	result, err = fn(ctx, tx)
	if err != nil {
		var zero T
		return zero, err
	}
	if err = tx.Commit(); err != nil {
		var zero T
		return zero, fmt.Errorf("commit: %w", err)
	}
	committed = true
	return result, nil
}

// WithTx is InTx for functions without a result.
func WithTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx DBTX) error) error {
	_, err := InTx(ctx, db, func(ctx context.Context, tx DBTX) (struct{}, error) {
		return struct{}{}, fn(ctx, tx)
	})
	return err
}
