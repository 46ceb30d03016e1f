// Package dbx holds the database plumbing shared by the repositories: the
// DBTX handle accepted by every repository constructor, a transaction
// helper and driver error classification.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is what repositories query through. *sql.DB and *sql.Tx both
// satisfy it, so the same repository serves plain calls and transactions.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside one transaction: commit when fn returns nil,
// rollback on error or panic (the panic is re-raised).
//
// The store creates a user and reads the row back in one transaction:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    users := manager.Users(tx)
//	    if _, err := users.CreateIfAbsent(ctx, identity); err != nil {
//	        return err
//	    }
//	    user, err = users.GetByIdentity(ctx, identity)
//	    return err
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	return fn(ctx, tx)
}
