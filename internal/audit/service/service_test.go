package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"votetrail/backend/internal/audit/domain"
	"votetrail/backend/internal/audit/report"
)

type mockRepo struct {
	newest  []*domain.AuditRecord
	oldest  []*domain.AuditRecord
	listErr error
}

func (m *mockRepo) Append(context.Context, ...*domain.AuditRecord) error { return nil }

func (m *mockRepo) ListNewestFirst(context.Context) ([]*domain.AuditRecord, error) {
	return m.newest, m.listErr
}

func (m *mockRepo) ListOldestFirst(context.Context) ([]*domain.AuditRecord, error) {
	return m.oldest, m.listErr
}

type mockObserver struct{ calls int }

func (m *mockObserver) ObserveReportGenerate(time.Time) { m.calls++ }

func rec(action domain.Action, ts time.Time) *domain.AuditRecord {
	return &domain.AuditRecord{ID: uuid.New(), EntityName: "VoteEntity", Action: action, Timestamp: ts}
}

func TestService_List(t *testing.T) {
	now := time.Now().UTC()
	want := []*domain.AuditRecord{rec(domain.ActionRead, now), rec(domain.ActionWrite, now.Add(-time.Second))}
	svc := NewService(&mockRepo{newest: want}, nil)

	got, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("List() = %v, want %v", got, want)
	}
}

func TestService_Report_OldestFirst(t *testing.T) {
	now := time.Now().UTC()
	oldest := []*domain.AuditRecord{rec(domain.ActionWrite, now.Add(-time.Second)), rec(domain.ActionRead, now)}
	obs := &mockObserver{}
	svc := NewService(&mockRepo{oldest: oldest}, obs)

	doc, err := svc.Report(context.Background())
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	parsed, err := report.ParseReport(doc)
	if err != nil {
		t.Fatalf("ParseReport: %v", err)
	}
	if len(parsed) != 2 || parsed[0].ID != oldest[0].ID || parsed[1].ID != oldest[1].ID {
		t.Errorf("report entries out of order: %v", parsed)
	}
	if obs.calls != 1 {
		t.Errorf("observer calls = %d, want 1", obs.calls)
	}
}

func TestService_Report_EmptyLog(t *testing.T) {
	svc := NewService(&mockRepo{}, nil)
	doc, err := svc.Report(context.Background())
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if !strings.Contains(doc, "<AuditReport></AuditReport>") {
		t.Errorf("Report() = %q, want empty report", doc)
	}
}

func TestService_RepositoryError(t *testing.T) {
	wantErr := errors.New("db down")
	svc := NewService(&mockRepo{listErr: wantErr}, nil)

	if _, err := svc.List(context.Background()); !errors.Is(err, wantErr) {
		t.Errorf("List error = %v, want %v", err, wantErr)
	}
	if _, err := svc.Report(context.Background()); !errors.Is(err, wantErr) {
		t.Errorf("Report error = %v, want %v", err, wantErr)
	}
}
