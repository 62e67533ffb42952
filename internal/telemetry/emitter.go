package telemetry

import (
	"context"
	"errors"

	auditdomain "votetrail/backend/internal/audit/domain"
)

// EventEmitter emits committed audit records to an external stream (OTel logs, Kafka, Loki).
// Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, rec *auditdomain.AuditRecord) error
}

// Multi returns an EventEmitter that emits to every non-nil emitter and joins their errors.
// Returns nil when no emitter is given.
func Multi(emitters ...EventEmitter) EventEmitter {
	var out multiEmitter
	for _, e := range emitters {
		if e != nil {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

type multiEmitter []EventEmitter

func (m multiEmitter) Emit(ctx context.Context, rec *auditdomain.AuditRecord) error {
	var errs []error
	for _, e := range m {
		if err := e.Emit(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
