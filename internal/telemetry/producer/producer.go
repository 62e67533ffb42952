// Package producer defines the interface for publishing audit records to a message broker.
package producer

import (
	"votetrail/backend/internal/telemetry"
)

// Producer publishes audit records. Callers use it best-effort: log and ignore errors.
type Producer interface {
	telemetry.EventEmitter
	// Close releases resources (e.g. Kafka writer). Safe to call if already closed.
	Close() error
}
