package otel

import (
	"context"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	auditdomain "votetrail/backend/internal/audit/domain"
	"votetrail/backend/internal/telemetry"
)

const instrumentationName = "votetrail.audit"

// recordEmitter is the part of otellog.Logger the emitter uses.
type recordEmitter interface {
	Emit(ctx context.Context, rec otellog.Record)
}

// NewEventEmitter returns an EventEmitter that sends audit records as OTel log records via
// the given LoggerProvider. If provider is nil, returns a no-op emitter.
func NewEventEmitter(provider *sdklog.LoggerProvider) telemetry.EventEmitter {
	if provider == nil {
		return noopEmitter{}
	}
	return NewEventEmitterWithLogger(provider.Logger(instrumentationName))
}

// NewEventEmitterWithLogger returns an EventEmitter that writes to logger.
func NewEventEmitterWithLogger(logger recordEmitter) telemetry.EventEmitter {
	return &otelEmitter{logger: logger}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, *auditdomain.AuditRecord) error { return nil }

type otelEmitter struct {
	logger recordEmitter
}

// Emit converts the audit record to an OTel log record. The payload becomes the body; the
// other fields become attributes.
func (e *otelEmitter) Emit(ctx context.Context, a *auditdomain.AuditRecord) error {
	if a == nil {
		return nil
	}
	rec := otellog.Record{}
	rec.SetTimestamp(a.Timestamp)
	rec.SetObservedTimestamp(a.Timestamp)
	rec.SetSeverity(otellog.SeverityInfo)
	rec.SetEventName("audit." + string(a.Action))
	if a.Payload != nil {
		rec.SetBody(otellog.StringValue(*a.Payload))
	}
	rec.AddAttributes(
		otellog.String("audit.id", a.ID.String()),
		otellog.String("audit.entity_name", a.EntityName),
		otellog.String("audit.action", string(a.Action)),
	)
	if a.EntityID != nil {
		rec.AddAttributes(otellog.String("audit.entity_id", a.EntityID.String()))
	}
	e.logger.Emit(ctx, rec)
	return nil
}
