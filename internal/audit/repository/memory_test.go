package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"votetrail/backend/internal/audit/domain"
	"votetrail/backend/internal/db/uow"
)

func newRecord(action domain.Action, ts time.Time) *domain.AuditRecord {
	return &domain.AuditRecord{ID: uuid.New(), EntityName: "VoteEntity", Action: action, Timestamp: ts}
}

func TestMemoryRepository_Ordering(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	first := newRecord(domain.ActionWrite, base)
	second := newRecord(domain.ActionRead, base.Add(time.Second))
	third := newRecord(domain.ActionRead, base.Add(2*time.Second))

	if err := repo.Append(ctx, second, first); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := repo.Append(ctx, third); err != nil {
		t.Fatalf("Append: %v", err)
	}

	newest, err := repo.ListNewestFirst(ctx)
	if err != nil {
		t.Fatalf("ListNewestFirst: %v", err)
	}
	oldest, err := repo.ListOldestFirst(ctx)
	if err != nil {
		t.Fatalf("ListOldestFirst: %v", err)
	}
	wantNewest := []uuid.UUID{third.ID, second.ID, first.ID}
	for i, id := range wantNewest {
		if newest[i].ID != id {
			t.Errorf("newest[%d] = %s, want %s", i, newest[i].ID, id)
		}
		if oldest[len(oldest)-1-i].ID != id {
			t.Errorf("oldest[%d] = %s, want %s", len(oldest)-1-i, oldest[len(oldest)-1-i].ID, id)
		}
	}
}

func TestMemoryRepository_EmptyListIsNonNil(t *testing.T) {
	repo := NewMemoryRepository()
	got, err := repo.ListNewestFirst(context.Background())
	if err != nil {
		t.Fatalf("ListNewestFirst: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("ListNewestFirst() = %v, want empty non-nil slice", got)
	}
}

func TestMemoryRepository_StoresCopies(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	payload := `{"candidate":"Boromir"}`
	rec := newRecord(domain.ActionWrite, time.Now().UTC())
	rec.Payload = &payload

	if err := repo.Append(ctx, rec); err != nil {
		t.Fatalf("Append: %v", err)
	}
	payload = "mutated"

	got, _ := repo.ListNewestFirst(ctx)
	if *got[0].Payload != `{"candidate":"Boromir"}` {
		t.Errorf("Payload = %q, caller mutation leaked into store", *got[0].Payload)
	}
}

func TestMemoryRepository_AppendInsideWorkVisibleAfterCommit(t *testing.T) {
	repo := NewMemoryRepository()
	runner := uow.NewRunner(uow.NopBeginner{}, 0)

	err := runner.Run(context.Background(), func(ctx context.Context) error {
		if err := repo.Append(ctx, newRecord(domain.ActionRead, time.Now().UTC())); err != nil {
			return err
		}
		got, _ := repo.ListNewestFirst(ctx)
		if len(got) != 0 {
			t.Errorf("len = %d before commit, want 0", len(got))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	got, _ := repo.ListNewestFirst(context.Background())
	if len(got) != 1 {
		t.Errorf("len = %d after commit, want 1", len(got))
	}
}

func TestMemoryRepository_AppendDiscardedOnRollback(t *testing.T) {
	repo := NewMemoryRepository()
	runner := uow.NewRunner(uow.NopBeginner{}, 0)

	_ = runner.Run(context.Background(), func(ctx context.Context) error {
		_ = repo.Append(ctx, newRecord(domain.ActionWrite, time.Now().UTC()))
		return context.DeadlineExceeded
	})
	got, _ := repo.ListNewestFirst(context.Background())
	if len(got) != 0 {
		t.Errorf("len = %d after rollback, want 0", len(got))
	}
}
