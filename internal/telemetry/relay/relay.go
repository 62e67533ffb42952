// Package relay moves audit events from the Kafka audit topic to Loki.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	telemetrydomain "votetrail/backend/internal/telemetry/domain"
)

// pushTimeout bounds one push to the sink.
const pushTimeout = 10 * time.Second

// MessageReader is the subset of *kafka.Reader used by the relay.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// EventSink receives decoded audit events (e.g. *loki.Emitter).
type EventSink interface {
	PushEvent(ctx context.Context, ev *telemetrydomain.AuditEvent) error
}

// Relay reads audit events from Kafka and pushes them to a sink.
type Relay struct {
	reader MessageReader
	sink   EventSink
	logger *zap.Logger
}

// New returns a Relay. A nil logger is replaced by a no-op logger.
func New(reader MessageReader, sink EventSink, logger *zap.Logger) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relay{reader: reader, sink: sink, logger: logger}
}

// NewKafkaReader returns a consumer-group reader for the audit topic.
func NewKafkaReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		CommitInterval: time.Second,
	})
}

// Run relays messages until ctx is done, then returns nil. Read errors, malformed messages and
// push failures are logged and skipped.
func (r *Relay) Run(ctx context.Context) error {
	for {
		msg, err := r.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			r.logger.Warn("audit relay: kafka read failed", zap.Error(err))
			continue
		}
		r.Handle(ctx, msg)
	}
}

// Handle decodes one message and pushes it to the sink.
func (r *Relay) Handle(ctx context.Context, msg kafka.Message) {
	var ev telemetrydomain.AuditEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil || ev.ID == "" {
		r.logger.Warn("audit relay: skipping malformed message",
			zap.Int64("offset", msg.Offset),
			zap.Int("partition", msg.Partition),
			zap.Error(err),
		)
		return
	}
	pushCtx, cancel := context.WithTimeout(ctx, pushTimeout)
	defer cancel()
	if err := r.sink.PushEvent(pushCtx, &ev); err != nil {
		r.logger.Warn("audit relay: push failed", zap.String("audit_id", ev.ID), zap.Error(err))
	}
}
