package users

import (
	"context"

	"github.com/dmitrijs2005/dogspotter/internal/server/models"
)

type Repository interface {
	GetByIdentity(ctx context.Context, identity int64) (*models.User, error)
	CreateIfAbsent(ctx context.Context, identity int64) (bool, error)
	IsSuspended(ctx context.Context, id int64) (bool, error)
	SetSuspended(ctx context.Context, id int64) error
}
