package submissions

import (
	"context"

	"github.com/dmitrijs2005/dogspotter/internal/server/models"
)

type Repository interface {
	ExistsByDigest(ctx context.Context, digest string) (bool, error)
	Create(ctx context.Context, s *models.Submission) (*models.Submission, error)
	StatsForUser(ctx context.Context, ownerID int64) (models.Stats, error)
}
