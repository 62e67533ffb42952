//go:build integration

package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"votetrail/backend/internal/audit"
	auditdomain "votetrail/backend/internal/audit/domain"
	auditrepo "votetrail/backend/internal/audit/repository"
	"votetrail/backend/internal/db"
	"votetrail/backend/internal/db/uow"
	"votetrail/backend/internal/testutil/containers"
	"votetrail/backend/internal/vote/domain"
	voterepo "votetrail/backend/internal/vote/repository"
	"votetrail/backend/internal/vote/service"
)

type PostgresSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	votes    *voterepo.PostgresRepository
	audits   *auditrepo.PostgresRepository
	runner   *uow.Runner
	svc      *service.Service
}

func TestPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.votes = voterepo.NewPostgresRepository(s.postgres.DB)
	s.audits = auditrepo.NewPostgresRepository(s.postgres.DB)
	s.runner = uow.NewRunner(uow.SQLBeginner{DB: s.postgres.DB}, 0)
	auditor := audit.NewAuditor(s.audits)
	s.svc = service.NewService(s.runner, voterepo.NewAudited(s.votes, auditor.Track(domain.EntityName)), nil)
}

func (s *PostgresSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "votes", "audits"))
}

func (s *PostgresSuite) TestRegisterAndResults() {
	ctx := context.Background()
	for _, v := range []domain.Vote{
		{Candidate: "Legolas", Party: "Woodelves"},
		{Candidate: "Boromir", Party: "Gondor"},
		{Candidate: "Faramir", Party: "Gondor"},
		{Candidate: "Gimli", Party: "Erebor"},
	} {
		_, err := s.svc.RegisterVote(ctx, v)
		s.Require().NoError(err)
	}

	results, err := s.svc.CalculateResults(ctx)
	s.Require().NoError(err)
	s.Equal([]domain.Result{
		{Party: "Gondor", VoteCount: 2},
		{Party: "Erebor", VoteCount: 1},
		{Party: "Woodelves", VoteCount: 1},
	}, results)

	records, err := s.audits.ListOldestFirst(ctx)
	s.Require().NoError(err)
	s.Len(records, 4)
	for _, r := range records {
		s.Equal(domain.EntityName, r.EntityName)
		s.Equal(auditdomain.ActionWrite, r.Action)
		s.Require().NotNil(r.EntityID)
		s.Require().NotNil(r.Payload)
	}
}

func (s *PostgresSuite) TestGetVoteRoundTrip() {
	ctx := context.Background()
	id, err := s.svc.RegisterVote(ctx, domain.Vote{Candidate: "Boromir", Party: "Gondor"})
	s.Require().NoError(err)

	votes, err := s.svc.ListVotes(ctx)
	s.Require().NoError(err)
	s.Require().Len(votes, 1)
	s.Equal(id, votes[0].ID.String())

	got, err := s.svc.GetVote(ctx, votes[0].ID)
	s.Require().NoError(err)
	s.Equal(votes[0].Timestamp, got.Timestamp)

	records, err := s.audits.ListNewestFirst(ctx)
	s.Require().NoError(err)
	s.Len(records, 3) // WRITE, READ from list, READ from get
}

func (s *PostgresSuite) TestAuditFailureRollsBackVote() {
	ctx := context.Background()
	failing := audit.NewAuditor(s.audits).Track(strings.Repeat("x", auditdomain.MaxEntityNameLength+1))
	svc := service.NewService(s.runner, voterepo.NewAudited(s.votes, failing), nil)

	_, err := svc.RegisterVote(ctx, domain.Vote{Candidate: "Boromir", Party: "Gondor"})
	s.Require().Error(err)
	s.True(errors.Is(err, auditdomain.ErrInvalidEntityName))

	n, err := s.svc.CountVotes(ctx)
	s.Require().NoError(err)
	s.Equal(0, n)
}

func (s *PostgresSuite) TestAuditInsertFailureRollsBackVote() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "votes"))
	_, err := s.postgres.DB.ExecContext(ctx, `ALTER TABLE testable.audits ADD CONSTRAINT audits_reject CHECK (action <> 'WRITE') NOT VALID`)
	s.Require().NoError(err)
	defer func() {
		_, _ = s.postgres.DB.ExecContext(ctx, `ALTER TABLE testable.audits DROP CONSTRAINT audits_reject`)
	}()

	_, err = s.svc.RegisterVote(ctx, domain.Vote{Candidate: "Boromir", Party: "Gondor"})
	s.Require().Error(err)
	var perr *db.PersistenceError
	s.True(errors.As(err, &perr))

	n, err := s.svc.CountVotes(ctx)
	s.Require().NoError(err)
	s.Equal(0, n)
}

func (s *PostgresSuite) TestAuditRecordFields() {
	ctx := context.Background()
	payload := strings.Repeat("p", auditdomain.MaxPayloadLength)
	err := s.runner.Run(ctx, func(ctx context.Context) error {
		return audit.NewAuditor(s.audits).RecordAccess(ctx, "VoteEntity", nil, auditdomain.ActionRead, payload)
	})
	s.Require().NoError(err)

	records, err := s.audits.ListOldestFirst(ctx)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Nil(records[0].EntityID)
	s.Require().NotNil(records[0].Payload)
	s.Equal(payload, *records[0].Payload)
	s.Equal("UTC", records[0].Timestamp.Location().String())
}
