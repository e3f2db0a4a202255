package dbx

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "dbx.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT NOT NULL)`)
	require.NoError(t, err)
	return db
}

func rows(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM kv`).Scan(&n))
	return n
}

func insert(ctx context.Context, tx DBTX, k string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO kv(k, v) VALUES (?, 'x')`, k)
	return err
}

func TestInTx_CommitsAndReturnsResult(t *testing.T) {
	db := openDB(t)

	got, err := InTx(context.Background(), db, func(ctx context.Context, tx DBTX) (string, error) {
		if err := insert(ctx, tx, "salt"); err != nil {
			return "", err
		}
		var v string
		err := tx.QueryRowContext(ctx, `SELECT v FROM kv WHERE k = 'salt'`).Scan(&v)
		return v, err
	})
	require.NoError(t, err)
	assert.Equal(t, "x", got)
	assert.Equal(t, 1, rows(t, db))
}

func TestInTx_ErrorRollsBackAndZeroesResult(t *testing.T) {
	db := openDB(t)
	boom := errors.New("boom")

	got, err := InTx(context.Background(), db, func(ctx context.Context, tx DBTX) (int, error) {
		require.NoError(t, insert(ctx, tx, "salt"))
		return 42, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, got)
	assert.Zero(t, rows(t, db))
}

func TestWithTx_Commits(t *testing.T) {
	db := openDB(t)

	require.NoError(t, WithTx(context.Background(), db, func(ctx context.Context, tx DBTX) error {
		return insert(ctx, tx, "verifier")
	}))
	assert.Equal(t, 1, rows(t, db))
}

func TestWithTx_PanicRollsBackAndPropagates(t *testing.T) {
	db := openDB(t)

	assert.PanicsWithValue(t, "kaput", func() {
		_ = WithTx(context.Background(), db, func(ctx context.Context, tx DBTX) error {
			require.NoError(t, insert(ctx, tx, "session"))
			panic("kaput")
		})
	})
	assert.Zero(t, rows(t, db))
}

func TestWithTx_BeginFailsOnClosedDB(t *testing.T) {
	db := openDB(t)
	require.NoError(t, db.Close())

	err := WithTx(context.Background(), db, func(context.Context, DBTX) error { return nil })
	assert.ErrorContains(t, err, "begin tx")
}
