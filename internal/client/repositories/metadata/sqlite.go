package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/aln/internal/dbx"
)

const (
	getQuery = `SELECT value FROM metadata WHERE key = ?`
	putQuery = `
		INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	clearQuery = `DELETE FROM metadata`
)

type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository works on a *sql.DB or, inside a dbx transaction, on a *sql.Tx.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	switch err := r.db.QueryRowContext(ctx, getQuery, key).Scan(&value); {
	case errors.Is(err, sql.ErrNoRows):
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("metadata get %q: %w", key, err)
	}
	return value, true, nil
}

func (r *SQLiteRepository) Put(ctx context.Context, key string, value []byte) error {
	if _, err := r.db.ExecContext(ctx, putQuery, key, value); err != nil {
		return fmt.Errorf("metadata put %q: %w", key, err)
	}
	return nil
}

// Delete removes keys in one statement. Missing keys are not an error.
func (r *SQLiteRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	args := make([]any, 0, len(keys))
	for _, k := range keys {
		args = append(args, k)
	}
	q := `DELETE FROM metadata WHERE key IN (?` + strings.Repeat(`, ?`, len(keys)-1) + `)`
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("metadata delete %q: %w", keys, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, clearQuery); err != nil {
		return fmt.Errorf("metadata clear: %w", err)
	}
	return nil
}
