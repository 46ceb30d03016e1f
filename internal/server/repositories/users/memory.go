package users

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/dogspotter/internal/common"
	"github.com/dmitrijs2005/dogspotter/internal/server/models"
)

// MemoryRepository keeps users in process memory with the same uniqueness
// rules as the SQL schema.
type MemoryRepository struct {
	mu         sync.Mutex
	nextID     int64
	byID       map[int64]*models.User
	byIdentity map[int64]int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:       make(map[int64]*models.User),
		byIdentity: make(map[int64]int64),
	}
}

// Len returns the number of stored users.
func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

func (r *MemoryRepository) GetByIdentity(ctx context.Context, identity int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byIdentity[identity]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u := *r.byID[id]
	return &u, nil
}

func (r *MemoryRepository) CreateIfAbsent(ctx context.Context, identity int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byIdentity[identity]; ok {
		return false, nil
	}
	r.nextID++
	r.byID[r.nextID] = &models.User{ID: r.nextID, Identity: identity, CreatedAt: time.Now().UTC()}
	r.byIdentity[identity] = r.nextID
	return true, nil
}

func (r *MemoryRepository) IsSuspended(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return false, common.ErrorNotFound
	}
	return u.Suspended, nil
}

func (r *MemoryRepository) SetSuspended(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.Suspended = true
	return nil
}
