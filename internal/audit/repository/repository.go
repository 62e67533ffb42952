package repository

import (
	"context"

	"votetrail/backend/internal/audit/domain"
)

// Repository is the append-only audit log. Records are never updated or deleted.
type Repository interface {
	// Append inserts records in order. When ctx carries a unit of work the inserts join its
	// transaction.
	Append(ctx context.Context, records ...*domain.AuditRecord) error
	// ListNewestFirst returns every record ordered by timestamp descending.
	ListNewestFirst(ctx context.Context) ([]*domain.AuditRecord, error)
	// ListOldestFirst returns every record ordered by timestamp ascending.
	ListOldestFirst(ctx context.Context) ([]*domain.AuditRecord, error)
}
