// Package store is the submission store used by the intake pipeline: user
// resolution, the duplicate gate, submission inserts, per-user aggregates and
// the one-way suspension flag.
//
// Every call is a fresh query; nothing about users or submissions is cached
// in process. Each operation is atomic on its own and none of them keeps a
// transaction open across calls.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/dogspotter/internal/common"
	"github.com/dmitrijs2005/dogspotter/internal/dbx"
	"github.com/dmitrijs2005/dogspotter/internal/digest"
	"github.com/dmitrijs2005/dogspotter/internal/logging"
	"github.com/dmitrijs2005/dogspotter/internal/server/models"
	"github.com/dmitrijs2005/dogspotter/internal/server/repositories/repomanager"
)

// Store backs the intake pipeline with the relational database.
type Store struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func New(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *Store {
	return &Store{db: db, repomanager: m, logger: logger.With("module", "store")}
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, common.ErrStore, err)
}

// inTx runs fn in a transaction. The in-memory backend has no *sql.DB and
// runs fn directly.
func (s *Store) inTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	if s.db == nil {
		return fn(ctx, nil)
	}
	return dbx.WithTx(ctx, s.db, nil, fn)
}

// ResolveOrCreateUser returns the user for identity, creating it on first
// sight. Concurrent callers with the same identity converge on one row.
func (s *Store) ResolveOrCreateUser(ctx context.Context, identity int64) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByIdentity(ctx, identity)
	if err == nil {
		s.logger.Debug(ctx, "user found", "identity", identity, "user_id", user.ID)
		return user, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, storeErr("lookup user", err)
	}

	var created bool
	err = s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		var err error
		if created, err = repo.CreateIfAbsent(ctx, identity); err != nil {
			return storeErr("create user", err)
		}
		if user, err = repo.GetByIdentity(ctx, identity); err != nil {
			return storeErr("reread user", err)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, common.ErrStore) {
			err = storeErr("create user", err)
		}
		return nil, err
	}

	if created {
		s.logger.Info(ctx, "user created", "identity", identity, "user_id", user.ID)
	}
	return user, nil
}

// LookupUser returns the user for identity without creating it.
// common.ErrorNotFound is returned as is.
func (s *Store) LookupUser(ctx context.Context, identity int64) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, storeErr("lookup user", err)
	}
	return user, nil
}

// ExistsByDigest reports whether content with this digest is already stored.
func (s *Store) ExistsByDigest(ctx context.Context, d string) (bool, error) {
	if !digest.Valid(d) {
		return false, common.ErrInvalidDigest
	}
	ok, err := s.repomanager.Submissions(s.db).ExistsByDigest(ctx, d)
	if err != nil {
		return false, storeErr("probe digest", err)
	}
	return ok, nil
}

// InsertSubmission stores a new row. A digest collision (a concurrent upload
// of the same content) is returned as common.ErrConstraintViolation.
func (s *Store) InsertSubmission(ctx context.Context, name string, ownerID int64, classified bool, d string) (int64, error) {
	if !digest.Valid(d) {
		return 0, common.ErrInvalidDigest
	}

	sub, err := s.repomanager.Submissions(s.db).Create(ctx, &models.Submission{
		Name:       name,
		OwnerID:    ownerID,
		Classified: classified,
		Digest:     d,
	})
	if err != nil {
		if errors.Is(err, common.ErrConstraintViolation) {
			return 0, err
		}
		return 0, storeErr("insert submission", err)
	}

	s.logger.Info(ctx, "submission stored", "user_id", ownerID, "submission_id", sub.ID, "name", name, "classified", classified)
	return sub.ID, nil
}

// StatsForUser aggregates the user's submissions; (0, 0) when there are none.
func (s *Store) StatsForUser(ctx context.Context, ownerID int64) (models.Stats, error) {
	stats, err := s.repomanager.Submissions(s.db).StatsForUser(ctx, ownerID)
	if err != nil {
		return models.Stats{}, storeErr("stats", err)
	}
	return stats, nil
}

// SetSuspended marks the user suspended. Suspending twice is not an error.
func (s *Store) SetSuspended(ctx context.Context, ownerID int64) error {
	if err := s.repomanager.Users(s.db).SetSuspended(ctx, ownerID); err != nil {
		return storeErr("suspend user", err)
	}
	s.logger.Info(ctx, "user suspended", "user_id", ownerID)
	return nil
}

// IsSuspended returns the suspension flag. An unknown user is not suspended.
func (s *Store) IsSuspended(ctx context.Context, ownerID int64) (bool, error) {
	suspended, err := s.repomanager.Users(s.db).IsSuspended(ctx, ownerID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, storeErr("check suspension", err)
	}
	return suspended, nil
}
