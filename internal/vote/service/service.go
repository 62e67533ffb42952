// Package service registers votes, tallies results and lists votes. Every operation that
// touches individual votes runs in one unit of work so its audit records commit with it.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"votetrail/backend/internal/db/uow"
	"votetrail/backend/internal/vote/domain"
	voterepo "votetrail/backend/internal/vote/repository"
)

// UnitOfWork runs fn in a transaction. *uow.Runner satisfies it.
type UnitOfWork interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// VoteRecorder counts registrations. *metrics.Metrics satisfies it.
type VoteRecorder interface {
	IncrementVotesRegistered()
	IncrementValidationFailures()
}

// Service implements vote registration, result calculation and listing.
type Service struct {
	work     UnitOfWork
	votes    voterepo.Repository
	recorder VoteRecorder
	now      func() time.Time
}

// NewService returns a vote service. votes should be the audited repository so reads and
// writes are recorded. recorder may be nil.
func NewService(work UnitOfWork, votes voterepo.Repository, recorder VoteRecorder) *Service {
	return &Service{work: work, votes: votes, recorder: recorder, now: time.Now}
}

// RegisterVote validates v and persists it with its WRITE audit record in one transaction.
// It returns the new vote id. Invalid votes fail with *domain.ValidationError before any
// transaction is opened.
func (s *Service) RegisterVote(ctx context.Context, v domain.Vote) (string, error) {
	if errs := domain.Validate(v); len(errs) > 0 {
		if s.recorder != nil {
			s.recorder.IncrementValidationFailures()
		}
		return "", &domain.ValidationError{Errors: errs}
	}

	rec := &domain.VoteRecord{
		ID:        uuid.New(),
		Candidate: v.Candidate,
		Party:     v.Party,
		Timestamp: s.now().UTC().Truncate(time.Microsecond),
	}
	err := s.work.Run(ctx, func(ctx context.Context) error {
		if err := s.votes.Create(ctx, rec); err != nil {
			return err
		}
		if w, ok := uow.From(ctx); ok && s.recorder != nil {
			w.AfterCommit(func(context.Context) { s.recorder.IncrementVotesRegistered() })
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return rec.ID.String(), nil
}

// CalculateResults returns the vote count per party, by count descending then party
// ascending. It is not audited.
func (s *Service) CalculateResults(ctx context.Context) ([]domain.Result, error) {
	results, err := s.votes.Results(ctx)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []domain.Result{}
	}
	return results, nil
}

// ListVotes returns every vote, newest first, recording one READ audit per vote.
func (s *Service) ListVotes(ctx context.Context) ([]*domain.VoteRecord, error) {
	var votes []*domain.VoteRecord
	err := s.work.Run(ctx, func(ctx context.Context) error {
		var err error
		votes, err = s.votes.ListNewestFirst(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if votes == nil {
		votes = []*domain.VoteRecord{}
	}
	return votes, nil
}

// GetVote returns the vote for id, recording a READ audit. Unknown ids fail with
// domain.ErrNotFound.
func (s *Service) GetVote(ctx context.Context, id uuid.UUID) (*domain.VoteRecord, error) {
	var vote *domain.VoteRecord
	err := s.work.Run(ctx, func(ctx context.Context) error {
		var err error
		vote, err = s.votes.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if vote == nil {
		return nil, domain.ErrNotFound
	}
	return vote, nil
}

// CountVotes returns the number of stored votes.
func (s *Service) CountVotes(ctx context.Context) (int, error) {
	return s.votes.Count(ctx)
}
