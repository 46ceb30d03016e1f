package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/dogspotter/internal/dbx"
	"github.com/dmitrijs2005/dogspotter/internal/server/repositories/submissions"
	"github.com/dmitrijs2005/dogspotter/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Submissions(db dbx.DBTX) submissions.Repository
}
