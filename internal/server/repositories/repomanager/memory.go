package repomanager

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dmitrijs2005/dogspotter/internal/dbx"
	"github.com/dmitrijs2005/dogspotter/internal/server/repositories/submissions"
	"github.com/dmitrijs2005/dogspotter/internal/server/repositories/users"
)

// MemoryDSN selects the in-memory backend instead of PostgreSQL.
const MemoryDSN = "memory://"

// IsMemoryDSN reports whether dsn asks for the in-memory backend.
func IsMemoryDSN(dsn string) bool {
	return strings.HasPrefix(dsn, MemoryDSN)
}

// InMemoryRepositoryManager serves process-local repositories. The db handle
// passed to the factories is ignored; data lives as long as the manager.
type InMemoryRepositoryManager struct {
	users       *users.MemoryRepository
	submissions *submissions.MemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		users:       users.NewMemoryRepository(),
		submissions: submissions.NewMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) Users(dbx.DBTX) users.Repository {
	return m.users
}

func (m *InMemoryRepositoryManager) Submissions(dbx.DBTX) submissions.Repository {
	return m.submissions
}

// UserCount exposes the number of stored users for assertions.
func (m *InMemoryRepositoryManager) UserCount() int {
	return m.users.Len()
}

// SubmissionCount exposes the number of stored submissions for assertions.
func (m *InMemoryRepositoryManager) SubmissionCount() int {
	return m.submissions.Len()
}
