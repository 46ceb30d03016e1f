// Package submissions persists photo metadata keyed by content digest.
package submissions

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/dogspotter/internal/common"
	"github.com/dmitrijs2005/dogspotter/internal/dbx"
	"github.com/dmitrijs2005/dogspotter/internal/server/models"
)

// PostgresRepository implements submission storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ExistsByDigest is the duplicate gate; it uses the digest index.
func (r *PostgresRepository) ExistsByDigest(ctx context.Context, digest string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM submissions WHERE digest = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, digest).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// Create inserts s and fills ID and CreatedAt. A digest that is already
// stored yields common.ErrConstraintViolation.
func (r *PostgresRepository) Create(ctx context.Context, s *models.Submission) (*models.Submission, error) {
	query := `
		INSERT INTO submissions (name, owner_id, classified, digest)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, s.Name, s.OwnerID, s.Classified, s.Digest).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("digest %s: %w", s.Digest, common.ErrConstraintViolation)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

// StatsForUser counts all and positively classified submissions of ownerID.
// A user without submissions gets a zero Stats.
func (r *PostgresRepository) StatsForUser(ctx context.Context, ownerID int64) (models.Stats, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN classified THEN 1 ELSE 0 END), 0)
		FROM submissions
		WHERE owner_id = $1
	`
	var total, positive sql.NullInt64
	if err := r.db.QueryRowContext(ctx, query, ownerID).Scan(&total, &positive); err != nil {
		return models.Stats{}, fmt.Errorf("db error: %w", err)
	}
	return models.Stats{Total: total.Int64, Positive: positive.Int64}, nil
}
