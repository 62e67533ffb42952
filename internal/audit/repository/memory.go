package repository

import (
	"context"
	"sort"
	"sync"

	"votetrail/backend/internal/audit/domain"
	"votetrail/backend/internal/db/uow"
)

// MemoryRepository keeps the audit log in process. Inside a unit of work, appends become
// visible only after the work commits.
type MemoryRepository struct {
	mu      sync.RWMutex
	records []domain.AuditRecord
}

// NewMemoryRepository returns an empty in-memory audit log.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Append stores copies of the records.
func (r *MemoryRepository) Append(ctx context.Context, records ...*domain.AuditRecord) error {
	copies := make([]domain.AuditRecord, 0, len(records))
	for _, a := range records {
		copies = append(copies, cloneRecord(a))
	}
	apply := func(context.Context) {
		r.mu.Lock()
		r.records = append(r.records, copies...)
		r.mu.Unlock()
	}
	if w, ok := uow.From(ctx); ok {
		w.AfterCommit(apply)
		return nil
	}
	apply(ctx)
	return nil
}

// ListNewestFirst returns all audit records, most recent first.
func (r *MemoryRepository) ListNewestFirst(ctx context.Context) ([]*domain.AuditRecord, error) {
	out := r.snapshot()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

// ListOldestFirst returns all audit records, oldest first.
func (r *MemoryRepository) ListOldestFirst(ctx context.Context) ([]*domain.AuditRecord, error) {
	out := r.snapshot()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (r *MemoryRepository) snapshot() []*domain.AuditRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.AuditRecord, len(r.records))
	for i := range r.records {
		c := cloneRecord(&r.records[i])
		out[i] = &c
	}
	return out
}

func cloneRecord(a *domain.AuditRecord) domain.AuditRecord {
	c := *a
	if a.EntityID != nil {
		id := *a.EntityID
		c.EntityID = &id
	}
	if a.Payload != nil {
		p := *a.Payload
		c.Payload = &p
	}
	return c
}
