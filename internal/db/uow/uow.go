// Package uow provides the request-scoped unit of work: one database transaction plus a
// buffer of pending writes that is flushed exactly once, immediately before commit.
package uow

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"votetrail/backend/internal/db"
)

const defaultTimeout = 5 * time.Second

var (
	// ErrNoWork is returned when an operation that stages writes runs outside a unit of work.
	ErrNoWork = errors.New("uow: no unit of work in context")
	// ErrWorkClosed is returned when a write is staged after the work has been flushed.
	ErrWorkClosed = errors.New("uow: unit of work already flushed")
)

// Tx is the transaction handle a Work commits or rolls back. *sql.Tx satisfies it.
type Tx interface {
	Commit() error
	Rollback() error
}

// Beginner starts transactions.
type Beginner interface {
	Begin(ctx context.Context) (Tx, error)
}

// SQLBeginner begins *sql.Tx transactions on a database handle.
type SQLBeginner struct {
	DB *sql.DB
}

// Begin starts a transaction with the default isolation level.
func (b SQLBeginner) Begin(ctx context.Context) (Tx, error) {
	tx, err := b.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// NopBeginner hands out transactions that do nothing. Used with the in-memory stores, which
// apply their writes from AfterCommit hooks.
type NopBeginner struct{}

// Begin returns a no-op transaction.
func (NopBeginner) Begin(context.Context) (Tx, error) { return nopTx{}, nil }

type nopTx struct{}

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }

// PendingWrite is a staged write. It runs inside the transaction when the work is flushed.
type PendingWrite func(ctx context.Context) error

// Work is one unit of work. It is owned by a single request and never shared.
type Work struct {
	tx Tx

	mu      sync.Mutex
	pending []PendingWrite
	after   []func(ctx context.Context)
	flushed bool
}

// Tx returns the transaction the work runs in.
func (w *Work) Tx() Tx { return w.tx }

// Stage appends a write to the pending buffer.
func (w *Work) Stage(fn PendingWrite) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.flushed {
		return ErrWorkClosed
	}
	w.pending = append(w.pending, fn)
	return nil
}

// Pending returns the number of staged writes not yet flushed.
func (w *Work) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// AfterCommit registers fn to run once the transaction has committed. Hooks run in
// registration order with a context that is no longer cancelled by the request.
func (w *Work) AfterCommit(fn func(ctx context.Context)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.after = append(w.after, fn)
}

// flush runs every staged write in order and closes the buffer. A second call is a no-op.
func (w *Work) flush(ctx context.Context) error {
	w.mu.Lock()
	if w.flushed {
		w.mu.Unlock()
		return nil
	}
	w.flushed = true
	pending := w.pending
	w.pending = nil
	w.mu.Unlock()

	for _, fn := range pending {
		if err := fn(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (w *Work) runAfterCommit(ctx context.Context) {
	w.mu.Lock()
	hooks := w.after
	w.after = nil
	w.mu.Unlock()
	for _, fn := range hooks {
		fn(ctx)
	}
}

type ctxKey struct{}

var workKey = ctxKey{}

// WithWork stores w in ctx for downstream repositories.
func WithWork(ctx context.Context, w *Work) context.Context {
	if w == nil {
		return ctx
	}
	return context.WithValue(ctx, workKey, w)
}

// From extracts the unit of work from ctx if present.
func From(ctx context.Context) (*Work, bool) {
	w, ok := ctx.Value(workKey).(*Work)
	return w, ok && w != nil
}

// SQLQuerier returns the *sql.Tx of the unit of work in ctx, or fallback when there is none.
func SQLQuerier(ctx context.Context, fallback *sql.DB) db.Querier {
	if w, ok := From(ctx); ok {
		if tx, ok := w.tx.(*sql.Tx); ok {
			return tx
		}
	}
	return fallback
}

// Runner opens units of work.
type Runner struct {
	beginner Beginner
	timeout  time.Duration
}

// NewRunner returns a Runner. timeout bounds a unit of work whose context has no deadline;
// zero means 5s.
func NewRunner(b Beginner, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Runner{beginner: b, timeout: timeout}
}

// Run executes fn inside a unit of work. If ctx already carries one, fn joins it and the
// outer Run owns flush and commit. Otherwise a transaction is started; when fn returns nil
// the staged writes are flushed, the transaction is committed and AfterCommit hooks run.
// Any error rolls the transaction back.
func (r *Runner) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := From(ctx); ok {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	tx, err := r.beginner.Begin(ctx)
	if err != nil {
		return db.Wrap("begin", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	w := &Work{tx: tx}
	ctx = WithWork(ctx, w)

	if err := fn(ctx); err != nil {
		return err
	}
	if err := w.flush(ctx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return db.Wrap("commit", err)
	}
	committed = true

	// Hooks must not join the finished work.
	hookCtx := context.WithValue(context.WithoutCancel(ctx), workKey, (*Work)(nil))
	w.runAfterCommit(hookCtx)
	return nil
}
