package telemetry

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	auditdomain "votetrail/backend/internal/audit/domain"
)

// emitTimeout is the max time allowed for a single async emit.
const emitTimeout = 5 * time.Second

// ShutdownDrainDuration is how long shutdown waits for in-flight emits before closing the
// emitters. Must be >= emitTimeout.
const ShutdownDrainDuration = emitTimeout

// Dispatcher emits audit records in the background so committed requests are not blocked by
// the stream. A nil *Dispatcher drops everything.
type Dispatcher struct {
	emitter EventEmitter
	logger  *zap.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher returns a Dispatcher for emitter. It returns nil when emitter is nil.
func NewDispatcher(emitter EventEmitter, logger *zap.Logger) *Dispatcher {
	if emitter == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{emitter: emitter, logger: logger}
}

// Publish runs Emit in a goroutine with emitTimeout. The goroutine does not inherit the
// caller's cancellation. Errors are logged. Records published after Drain has started are
// dropped.
func (d *Dispatcher) Publish(ctx context.Context, rec *auditdomain.AuditRecord) {
	if d == nil || rec == nil {
		return
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.Warn("audit stream closed; dropping record", zap.String("audit_id", rec.ID.String()))
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()
	go func() {
		defer d.wg.Done()
		emitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), emitTimeout)
		defer cancel()
		if err := d.emitter.Emit(emitCtx, rec); err != nil {
			d.logger.Warn("audit stream emit failed",
				zap.String("audit_id", rec.ID.String()),
				zap.Error(err),
			)
		}
	}()
}

// Drain stops accepting records and waits for in-flight emits to finish or for ctx to be done.
func (d *Dispatcher) Drain(ctx context.Context) error {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
