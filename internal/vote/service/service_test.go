package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"votetrail/backend/internal/audit"
	auditdomain "votetrail/backend/internal/audit/domain"
	auditrepo "votetrail/backend/internal/audit/repository"
	"votetrail/backend/internal/db/uow"
	"votetrail/backend/internal/vote/domain"
	voterepo "votetrail/backend/internal/vote/repository"
)

type mockRecorder struct {
	registered int
	failures   int
}

func (m *mockRecorder) IncrementVotesRegistered()    { m.registered++ }
func (m *mockRecorder) IncrementValidationFailures() { m.failures++ }

// failingAuditRepo rejects every append, as a full or unavailable audits table would.
type failingAuditRepo struct {
	auditrepo.Repository
	err error
}

func (f *failingAuditRepo) Append(context.Context, ...*auditdomain.AuditRecord) error { return f.err }

type fixture struct {
	svc      *Service
	votes    *voterepo.MemoryRepository
	audits   *auditrepo.MemoryRepository
	recorder *mockRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	votes := voterepo.NewMemoryRepository()
	audits := auditrepo.NewMemoryRepository()
	auditor := audit.NewAuditor(audits)
	rec := &mockRecorder{}
	svc := NewService(
		uow.NewRunner(uow.NopBeginner{}, 0),
		voterepo.NewAudited(votes, auditor.Track(domain.EntityName)),
		rec,
	)
	return &fixture{svc: svc, votes: votes, audits: audits, recorder: rec}
}

func mustRegister(t *testing.T, svc *Service, candidate, party string) string {
	t.Helper()
	id, err := svc.RegisterVote(context.Background(), domain.Vote{Candidate: candidate, Party: party})
	if err != nil {
		t.Fatalf("RegisterVote(%s, %s): %v", candidate, party, err)
	}
	return id
}

func TestRegisterVote_Success(t *testing.T) {
	f := newFixture(t)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 999, time.UTC)
	f.svc.now = func() time.Time { return fixed }

	id := mustRegister(t, f.svc, "Boromir", "Gondor")

	parsed, err := uuid.Parse(id)
	if err != nil {
		t.Fatalf("id %q is not a uuid: %v", id, err)
	}
	got, _ := f.votes.GetByID(context.Background(), parsed)
	if got == nil {
		t.Fatal("vote should be persisted")
	}
	if got.Candidate != "Boromir" || got.Party != "Gondor" {
		t.Errorf("stored vote = %+v", got)
	}
	if !got.Timestamp.Equal(fixed.Truncate(time.Microsecond)) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, fixed.Truncate(time.Microsecond))
	}
	if f.recorder.registered != 1 {
		t.Errorf("registered = %d, want 1", f.recorder.registered)
	}

	audits, _ := f.audits.ListNewestFirst(context.Background())
	if len(audits) != 1 {
		t.Fatalf("audits = %d, want 1", len(audits))
	}
	a := audits[0]
	if a.Action != auditdomain.ActionWrite || a.EntityName != "VoteEntity" {
		t.Errorf("audit = %s %s, want WRITE VoteEntity", a.Action, a.EntityName)
	}
	if a.EntityID == nil || *a.EntityID != parsed {
		t.Errorf("audit EntityID = %v, want %s", a.EntityID, parsed)
	}
	if a.Payload == nil || *a.Payload != `{"candidate":"Boromir","party":"Gondor"}` {
		t.Errorf("audit Payload = %v, want candidate/party snapshot", a.Payload)
	}
}

func TestRegisterVote_ValidationFailure(t *testing.T) {
	testCases := []struct {
		name string
		vote domain.Vote
		want int
	}{
		{"empty candidate", domain.Vote{Party: "Gondor"}, 1},
		{"empty party", domain.Vote{Candidate: "Boromir"}, 1},
		{"both empty", domain.Vote{}, 2},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			id, err := f.svc.RegisterVote(context.Background(), tc.vote)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("error = %v, want *domain.ValidationError", err)
			}
			if len(ve.Errors) != tc.want {
				t.Errorf("field errors = %d, want %d", len(ve.Errors), tc.want)
			}
			if id != "" {
				t.Errorf("id = %q, want empty", id)
			}
			if n, _ := f.votes.Count(context.Background()); n != 0 {
				t.Errorf("votes = %d, want 0", n)
			}
			if audits, _ := f.audits.ListNewestFirst(context.Background()); len(audits) != 0 {
				t.Errorf("audits = %d, want 0", len(audits))
			}
			if f.recorder.failures != 1 || f.recorder.registered != 0 {
				t.Errorf("recorder = %+v, want one failure", f.recorder)
			}
		})
	}
}

func TestRegisterVote_AuditFailureRollsBack(t *testing.T) {
	wantErr := errors.New("audits unavailable")
	votes := voterepo.NewMemoryRepository()
	auditor := audit.NewAuditor(&failingAuditRepo{err: wantErr})
	rec := &mockRecorder{}
	svc := NewService(uow.NewRunner(uow.NopBeginner{}, 0),
		voterepo.NewAudited(votes, auditor.Track(domain.EntityName)), rec)

	_, err := svc.RegisterVote(context.Background(), domain.Vote{Candidate: "Boromir", Party: "Gondor"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("RegisterVote error = %v, want %v", err, wantErr)
	}
	if n, _ := votes.Count(context.Background()); n != 0 {
		t.Errorf("votes = %d after failed audit, want 0", n)
	}
	if rec.registered != 0 {
		t.Errorf("registered = %d, want 0", rec.registered)
	}
}

func TestCalculateResults(t *testing.T) {
	f := newFixture(t)
	mustRegister(t, f.svc, "Boromir", "Gondor")
	mustRegister(t, f.svc, "Legolas", "Woodelves")
	mustRegister(t, f.svc, "Faramir", "Gondor")

	results, err := f.svc.CalculateResults(context.Background())
	if err != nil {
		t.Fatalf("CalculateResults: %v", err)
	}
	want := []domain.Result{{Party: "Gondor", VoteCount: 2}, {Party: "Woodelves", VoteCount: 1}}
	if len(results) != len(want) {
		t.Fatalf("CalculateResults() = %v, want %v", results, want)
	}
	for i := range want {
		if results[i] != want[i] {
			t.Errorf("results[%d] = %v, want %v", i, results[i], want[i])
		}
	}

	audits, _ := f.audits.ListNewestFirst(context.Background())
	if len(audits) != 3 {
		t.Errorf("audits = %d, want 3 (results are not audited)", len(audits))
	}
}

func TestCalculateResults_NoVotes(t *testing.T) {
	f := newFixture(t)
	results, err := f.svc.CalculateResults(context.Background())
	if err != nil {
		t.Fatalf("CalculateResults: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Errorf("CalculateResults() = %v, want empty non-nil slice", results)
	}
}

func TestListVotes_AuditsEachRead(t *testing.T) {
	f := newFixture(t)
	mustRegister(t, f.svc, "Boromir", "Gondor")

	votes, err := f.svc.ListVotes(context.Background())
	if err != nil {
		t.Fatalf("ListVotes: %v", err)
	}
	if len(votes) != 1 {
		t.Fatalf("votes = %d, want 1", len(votes))
	}

	audits, _ := f.audits.ListOldestFirst(context.Background())
	var reads, writes int
	for _, a := range audits {
		if a.EntityName != "VoteEntity" {
			t.Errorf("EntityName = %q, want VoteEntity", a.EntityName)
		}
		switch a.Action {
		case auditdomain.ActionRead:
			reads++
		case auditdomain.ActionWrite:
			writes++
		}
	}
	if writes != 1 || reads != 1 {
		t.Errorf("writes=%d reads=%d, want 1 and 1", writes, reads)
	}
}

func TestListVotes_Empty(t *testing.T) {
	f := newFixture(t)
	votes, err := f.svc.ListVotes(context.Background())
	if err != nil {
		t.Fatalf("ListVotes: %v", err)
	}
	if votes == nil || len(votes) != 0 {
		t.Errorf("ListVotes() = %v, want empty non-nil slice", votes)
	}
	if audits, _ := f.audits.ListNewestFirst(context.Background()); len(audits) != 0 {
		t.Errorf("audits = %d, want 0", len(audits))
	}
}

func TestListVotes_NewestFirst(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	step := 0
	f.svc.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Second)
	}
	mustRegister(t, f.svc, "Boromir", "Gondor")
	mustRegister(t, f.svc, "Legolas", "Woodelves")

	votes, _ := f.svc.ListVotes(context.Background())
	if votes[0].Candidate != "Legolas" || votes[1].Candidate != "Boromir" {
		t.Errorf("order = %s, %s; want Legolas, Boromir", votes[0].Candidate, votes[1].Candidate)
	}
}

func TestGetVote(t *testing.T) {
	f := newFixture(t)
	id := mustRegister(t, f.svc, "Faramir", "Gondor")

	v, err := f.svc.GetVote(context.Background(), uuid.MustParse(id))
	if err != nil {
		t.Fatalf("GetVote: %v", err)
	}
	if v.Candidate != "Faramir" {
		t.Errorf("Candidate = %q, want Faramir", v.Candidate)
	}
	if _, err := f.svc.GetVote(context.Background(), uuid.New()); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetVote unknown id error = %v, want ErrNotFound", err)
	}

	audits, _ := f.audits.ListNewestFirst(context.Background())
	reads := 0
	for _, a := range audits {
		if a.Action == auditdomain.ActionRead {
			reads++
		}
	}
	if len(audits) != 2 || reads != 1 {
		t.Errorf("audits = %d with %d reads, want one WRITE and one READ", len(audits), reads)
	}
}

func TestCountVotes(t *testing.T) {
	f := newFixture(t)
	mustRegister(t, f.svc, "Boromir", "Gondor")
	n, err := f.svc.CountVotes(context.Background())
	if err != nil {
		t.Fatalf("CountVotes: %v", err)
	}
	if n != 1 {
		t.Errorf("CountVotes() = %d, want 1", n)
	}
}
