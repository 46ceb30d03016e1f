// Package users persists chat participants and their suspension flag.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/dogspotter/internal/common"
	"github.com/dmitrijs2005/dogspotter/internal/dbx"
	"github.com/dmitrijs2005/dogspotter/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByIdentity returns the user with the given external identity or
// common.ErrorNotFound.
func (r *PostgresRepository) GetByIdentity(ctx context.Context, identity int64) (*models.User, error) {
	query :=
		`SELECT id, identity, suspended, created_at FROM users
		 WHERE identity = $1
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, identity).Scan(&user.ID, &user.Identity, &user.Suspended, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

// CreateIfAbsent inserts a user row for identity. It reports false when the
// row already existed, including when a concurrent caller won the race.
func (r *PostgresRepository) CreateIfAbsent(ctx context.Context, identity int64) (bool, error) {
	query :=
		`INSERT INTO users (identity)
		 VALUES ($1)
		 ON CONFLICT (identity) DO NOTHING
		 `

	res, err := r.db.ExecContext(ctx, query, identity)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}

	return n == 1, nil
}

// IsSuspended returns the suspension flag of user id, or common.ErrorNotFound.
func (r *PostgresRepository) IsSuspended(ctx context.Context, id int64) (bool, error) {
	query :=
		`SELECT suspended FROM users
		 WHERE id = $1
		 `

	var suspended bool
	err := r.db.QueryRowContext(ctx, query, id).Scan(&suspended)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, common.ErrorNotFound
		}
		return false, fmt.Errorf("db error: %w", err)
	}

	return suspended, nil
}

// SetSuspended flips the flag to true. Repeating it is a no-op.
func (r *PostgresRepository) SetSuspended(ctx context.Context, id int64) error {
	query :=
		`UPDATE users SET suspended = TRUE
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}
