// Package domain defines the audit event shape published to external streams.
package domain

import (
	"time"

	auditdomain "votetrail/backend/internal/audit/domain"
)

// AuditEvent is the JSON form of a committed audit record on the audit stream.
type AuditEvent struct {
	ID         string    `json:"id"`
	EntityName string    `json:"entityName"`
	EntityID   *string   `json:"entityId,omitempty"`
	Action     string    `json:"action"`
	Payload    *string   `json:"payload,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Source     string    `json:"source"`
}

// Source is the value of AuditEvent.Source for events from this service.
const Source = "votetrail"

// FromRecord converts an audit record to its stream event. Returns nil for a nil record.
func FromRecord(rec *auditdomain.AuditRecord) *AuditEvent {
	if rec == nil {
		return nil
	}
	ev := &AuditEvent{
		ID:         rec.ID.String(),
		EntityName: rec.EntityName,
		Action:     string(rec.Action),
		Payload:    rec.Payload,
		Timestamp:  rec.Timestamp.UTC(),
		Source:     Source,
	}
	if rec.EntityID != nil {
		id := rec.EntityID.String()
		ev.EntityID = &id
	}
	return ev
}
