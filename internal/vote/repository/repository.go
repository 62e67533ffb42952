package repository

import (
	"context"

	"github.com/google/uuid"

	"votetrail/backend/internal/vote/domain"
)

// Repository defines persistence for votes. Votes are never updated or deleted.
type Repository interface {
	// Create inserts a vote. The vote must have ID and Timestamp set.
	Create(ctx context.Context, v *domain.VoteRecord) error
	// GetByID returns the vote for id, or nil if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.VoteRecord, error)
	// ListNewestFirst returns every vote ordered by timestamp descending.
	ListNewestFirst(ctx context.Context) ([]*domain.VoteRecord, error)
	// Results returns the vote count per party, by count descending then party ascending
	// (byte order).
	Results(ctx context.Context) ([]domain.Result, error)
	// Count returns the number of votes.
	Count(ctx context.Context) (int, error)
}
