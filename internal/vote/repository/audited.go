package repository

import (
	"context"

	"github.com/google/uuid"

	"votetrail/backend/internal/vote/domain"
)

// AccessTracker stages audit records for one entity kind. audit.Tracker satisfies it.
type AccessTracker interface {
	Read(ctx context.Context, entityID *uuid.UUID, payload any) error
	Write(ctx context.Context, entityID *uuid.UUID, payload any) error
}

// Audited wraps a Repository so every vote written or returned is audited on the unit of
// work in ctx. Results and Count are aggregates and pass through unaudited.
type Audited struct {
	Repository
	tracker AccessTracker
}

// NewAudited returns repo decorated with tracker.
func NewAudited(repo Repository, tracker AccessTracker) *Audited {
	return &Audited{Repository: repo, tracker: tracker}
}

// Create inserts v and stages a WRITE record with the candidate/party snapshot.
func (a *Audited) Create(ctx context.Context, v *domain.VoteRecord) error {
	if err := a.Repository.Create(ctx, v); err != nil {
		return err
	}
	id := v.ID
	return a.tracker.Write(ctx, &id, v.Vote())
}

// GetByID returns the vote for id and stages a READ record when it exists.
func (a *Audited) GetByID(ctx context.Context, id uuid.UUID) (*domain.VoteRecord, error) {
	v, err := a.Repository.GetByID(ctx, id)
	if err != nil || v == nil {
		return v, err
	}
	if err := a.tracker.Read(ctx, &v.ID, v.Vote()); err != nil {
		return nil, err
	}
	return v, nil
}

// ListNewestFirst returns all votes and stages one READ record per vote.
func (a *Audited) ListNewestFirst(ctx context.Context) ([]*domain.VoteRecord, error) {
	votes, err := a.Repository.ListNewestFirst(ctx)
	if err != nil {
		return nil, err
	}
	for _, v := range votes {
		id := v.ID
		if err := a.tracker.Read(ctx, &id, v.Vote()); err != nil {
			return nil, err
		}
	}
	return votes, nil
}
