package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"votetrail/backend/internal/db/uow"
	"votetrail/backend/internal/vote/domain"
)

// MemoryRepository keeps votes in process. Inside a unit of work, creates become visible
// only after the work commits.
type MemoryRepository struct {
	mu    sync.RWMutex
	votes []domain.VoteRecord
}

// NewMemoryRepository returns an empty in-memory vote store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Create stores a copy of v.
func (r *MemoryRepository) Create(ctx context.Context, v *domain.VoteRecord) error {
	c := *v
	apply := func(context.Context) {
		r.mu.Lock()
		r.votes = append(r.votes, c)
		r.mu.Unlock()
	}
	if w, ok := uow.From(ctx); ok {
		w.AfterCommit(apply)
		return nil
	}
	apply(ctx)
	return nil
}

// GetByID returns the vote for id, or nil if not found.
func (r *MemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.VoteRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.votes {
		if r.votes[i].ID == id {
			c := r.votes[i]
			return &c, nil
		}
	}
	return nil, nil
}

// ListNewestFirst returns all votes, most recent first.
func (r *MemoryRepository) ListNewestFirst(ctx context.Context) ([]*domain.VoteRecord, error) {
	r.mu.RLock()
	out := make([]*domain.VoteRecord, len(r.votes))
	for i := range r.votes {
		c := r.votes[i]
		out[i] = &c
	}
	r.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

// Results returns the vote count per party.
func (r *MemoryRepository) Results(ctx context.Context) ([]domain.Result, error) {
	r.mu.RLock()
	counts := make(map[string]int)
	for i := range r.votes {
		counts[r.votes[i].Party]++
	}
	r.mu.RUnlock()

	out := make([]domain.Result, 0, len(counts))
	for party, n := range counts {
		out = append(out, domain.Result{Party: party, VoteCount: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].VoteCount != out[j].VoteCount {
			return out[i].VoteCount > out[j].VoteCount
		}
		return out[i].Party < out[j].Party
	})
	return out, nil
}

// Count returns the number of votes.
func (r *MemoryRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.votes), nil
}
