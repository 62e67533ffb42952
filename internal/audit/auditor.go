// Package audit stages audit records for tracked entities on the request's unit of work.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"votetrail/backend/internal/audit/domain"
	auditrepo "votetrail/backend/internal/audit/repository"
	"votetrail/backend/internal/db/uow"
)

// CommitRecorder counts committed audit records. *metrics.Metrics satisfies it.
type CommitRecorder interface {
	AuditCommitted(action string)
}

// Publisher receives each audit record once its unit of work has committed. Publish must not
// block the caller.
type Publisher interface {
	Publish(ctx context.Context, rec *domain.AuditRecord)
}

// Option configures an Auditor.
type Option func(*Auditor)

// WithRecorder sets the commit counter.
func WithRecorder(r CommitRecorder) Option { return func(a *Auditor) { a.recorder = r } }

// WithPublisher sets the post-commit publisher for the audit stream.
func WithPublisher(p Publisher) Option { return func(a *Auditor) { a.publisher = p } }

// WithLogger sets the logger. nil keeps the default no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Auditor) {
		if l != nil {
			a.logger = l
		}
	}
}

// Auditor appends audit records for reads and writes of tracked entities. Records are staged
// on the unit of work in ctx and inserted when it commits.
type Auditor struct {
	repo      auditrepo.Repository
	recorder  CommitRecorder
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuditor returns an Auditor that persists to repo.
func NewAuditor(repo auditrepo.Repository, opts ...Option) *Auditor {
	a := &Auditor{repo: repo, logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RecordAccess stages one audit record for an access to entityName. entityID may be nil.
// payload nil means no snapshot; strings and raw JSON are stored as is, anything else is
// JSON encoded. It fails with uow.ErrNoWork when ctx carries no unit of work, and with a
// domain error when the record exceeds the column limits.
func (a *Auditor) RecordAccess(ctx context.Context, entityName string, entityID *uuid.UUID, action domain.Action, payload any) error {
	w, ok := uow.From(ctx)
	if !ok {
		return uow.ErrNoWork
	}
	text, err := serializePayload(payload)
	if err != nil {
		return fmt.Errorf("audit: serialize payload: %w", err)
	}
	rec := &domain.AuditRecord{
		ID:         uuid.New(),
		EntityName: entityName,
		Action:     action,
		Payload:    text,
		Timestamp:  a.now().UTC().Truncate(time.Microsecond),
	}
	if entityID != nil {
		id := *entityID
		rec.EntityID = &id
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	if err := w.Stage(func(ctx context.Context) error {
		return a.repo.Append(ctx, rec)
	}); err != nil {
		return err
	}
	w.AfterCommit(func(ctx context.Context) {
		a.logger.Debug("audit record committed",
			zap.String("audit_id", rec.ID.String()),
			zap.String("entity", rec.EntityName),
			zap.String("action", string(rec.Action)),
		)
		if a.recorder != nil {
			a.recorder.AuditCommitted(string(rec.Action))
		}
		if a.publisher != nil {
			a.publisher.Publish(ctx, rec)
		}
	})
	return nil
}

// Track returns a Tracker bound to one entity kind.
func (a *Auditor) Track(entityName string) Tracker {
	return Tracker{auditor: a, entityName: entityName}
}

// Tracker records reads and writes of a single entity kind.
type Tracker struct {
	auditor    *Auditor
	entityName string
}

// EntityName returns the tracked entity kind.
func (t Tracker) EntityName() string { return t.entityName }

// Read stages a READ record.
func (t Tracker) Read(ctx context.Context, entityID *uuid.UUID, payload any) error {
	return t.auditor.RecordAccess(ctx, t.entityName, entityID, domain.ActionRead, payload)
}

// Write stages a WRITE record.
func (t Tracker) Write(ctx context.Context, entityID *uuid.UUID, payload any) error {
	return t.auditor.RecordAccess(ctx, t.entityName, entityID, domain.ActionWrite, payload)
}

func serializePayload(payload any) (*string, error) {
	var s string
	switch v := payload.(type) {
	case nil:
		return nil, nil
	case string:
		s = v
	case json.RawMessage:
		s = string(v)
	case []byte:
		s = string(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		s = string(b)
	}
	return &s, nil
}
