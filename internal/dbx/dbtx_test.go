package dbx

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY,
		identity INTEGER NOT NULL UNIQUE,
		suspended BOOLEAN NOT NULL DEFAULT FALSE
	)`)
	require.NoError(t, err)
	return db
}

func countUsers(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n))
	return n
}

// createAndReread mirrors how the store resolves a new user.
func createAndReread(ctx context.Context, tx DBTX, identity int64) (int64, error) {
	if _, err := tx.ExecContext(ctx, `INSERT INTO users(identity) VALUES (?) ON CONFLICT (identity) DO NOTHING`, identity); err != nil {
		return 0, err
	}
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM users WHERE identity = ?`, identity).Scan(&id)
	return id, err
}

func TestWithTx_CommitsCreateAndReread(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	var first, second int64
	err := WithTx(ctx, db, nil, func(ctx context.Context, tx DBTX) error {
		var err error
		first, err = createAndReread(ctx, tx, 555)
		return err
	})
	require.NoError(t, err)

	err = WithTx(ctx, db, nil, func(ctx context.Context, tx DBTX) error {
		var err error
		second, err = createAndReread(ctx, tx, 555)
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, first, second, "the second call must find the committed row")
	assert.Equal(t, 1, countUsers(t, db))
}

func TestWithTx_RollbackOnFnError(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, err := createAndReread(ctx, tx, 1)
		require.NoError(t, err)
		return errors.New("reread mismatch")
	})
	require.EqualError(t, err, "reread mismatch")
	assert.Equal(t, 0, countUsers(t, db), "must roll back when fn fails")
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db := setupDB(t)

	defer func() {
		r := recover()
		require.NotNil(t, r, "panic must propagate")
		assert.Equal(t, 0, countUsers(t, db), "must roll back on panic")
	}()

	_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, err := createAndReread(ctx, tx, 2)
		require.NoError(t, err)
		panic("scan into nil pointer")
	})
}

func TestWithTx_BeginError(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Close())

	called := false
	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
}
