package submissions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/dogspotter/internal/common"
	"github.com/dmitrijs2005/dogspotter/internal/server/models"
)

// MemoryRepository keeps submissions in process memory and enforces the
// global digest uniqueness the SQL schema has.
type MemoryRepository struct {
	mu       sync.Mutex
	nextID   int64
	byDigest map[string]*models.Submission
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byDigest: make(map[string]*models.Submission)}
}

func (r *MemoryRepository) ExistsByDigest(ctx context.Context, digest string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.byDigest[digest]
	return ok, nil
}

func (r *MemoryRepository) Create(ctx context.Context, s *models.Submission) (*models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byDigest[s.Digest]; ok {
		return nil, fmt.Errorf("digest %s: %w", s.Digest, common.ErrConstraintViolation)
	}
	r.nextID++
	s.ID = r.nextID
	s.CreatedAt = time.Now().UTC()
	row := *s
	r.byDigest[s.Digest] = &row
	return s, nil
}

func (r *MemoryRepository) StatsForUser(ctx context.Context, ownerID int64) (models.Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var st models.Stats
	for _, s := range r.byDigest {
		if s.OwnerID != ownerID {
			continue
		}
		st.Total++
		if s.Classified {
			st.Positive++
		}
	}
	return st, nil
}

// Len returns the number of stored rows.
func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byDigest)
}
