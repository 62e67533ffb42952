package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	auditdomain "votetrail/backend/internal/audit/domain"
)

func TestFromRecord(t *testing.T) {
	if FromRecord(nil) != nil {
		t.Error("FromRecord(nil) should return nil")
	}

	entityID := uuid.New()
	payload := `{"candidate":"Boromir","party":"Gondor"}`
	rec := &auditdomain.AuditRecord{
		ID:         uuid.New(),
		EntityName: "VoteEntity",
		EntityID:   &entityID,
		Action:     auditdomain.ActionWrite,
		Payload:    &payload,
		Timestamp:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	ev := FromRecord(rec)
	if ev.ID != rec.ID.String() {
		t.Errorf("ID = %q, want %q", ev.ID, rec.ID.String())
	}
	if ev.EntityID == nil || *ev.EntityID != entityID.String() {
		t.Errorf("EntityID = %v, want %s", ev.EntityID, entityID)
	}
	if ev.Action != "WRITE" || ev.Source != Source {
		t.Errorf("Action/Source = %q/%q", ev.Action, ev.Source)
	}
}

func TestAuditEvent_JSONOmitsAbsentFields(t *testing.T) {
	ev := FromRecord(&auditdomain.AuditRecord{
		ID:         uuid.New(),
		EntityName: "VoteEntity",
		Action:     auditdomain.ActionRead,
		Timestamp:  time.Now().UTC(),
	})
	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := m["entityId"]; ok {
		t.Error("entityId should be omitted when absent")
	}
	if _, ok := m["payload"]; ok {
		t.Error("payload should be omitted when absent")
	}
}
