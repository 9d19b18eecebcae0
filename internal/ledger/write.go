package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/fnfn/internal/wrap"
)

// Record appends ev with the next seq.
//
// A repeated open or close for ev.CallID returns DUPLICATE_TRANSITION; a
// close with no open row returns ORPHAN_CLOSE. Neither leaves a row behind.
func (l *Ledger) Record(ctx context.Context, ev wrap.Event) error {
	if ev.State != wrap.StateOpen && ev.State != wrap.StateClosed {
		return &Error{Code: ErrCodeUnrecordedState, CallID: ev.CallID, State: string(ev.State)}
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record event: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if ev.State == wrap.StateClosed {
		var opened int
		err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM handle_events WHERE call_id = ? AND state = 'open'",
			ev.CallID,
		).Scan(&opened)
		if err != nil {
			return fmt.Errorf("record event: check open: %w", err)
		}
		if opened == 0 {
			return &Error{Code: ErrCodeOrphanClose, CallID: ev.CallID, State: string(ev.State)}
		}
	}

	var errText string
	if ev.Err != nil {
		errText = ev.Err.Error()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO handle_events
		(seq, call_id, function, param, resource, state, lazy, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		l.clock.Next(),
		ev.CallID,
		ev.Function,
		ev.Param,
		ev.Resource,
		string(ev.State),
		ev.Lazy,
		errText,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &Error{Code: ErrCodeDuplicateTransition, CallID: ev.CallID, State: string(ev.State), Err: err}
		}
		return fmt.Errorf("record event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record event: commit: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

// Recorder is a wrap.Observer that writes every event to a Ledger.
//
// Observe cannot return an error, so the first failure is kept for Err and
// logged; later events are still attempted.
//
// Thread-safety: Recorder is safe for concurrent use.
type Recorder struct {
	ledger *Ledger
	ctx    context.Context
	logger *slog.Logger

	mu  sync.Mutex
	err error
	n   int
}

// Observer returns a Recorder bound to ctx.
func (l *Ledger) Observer(ctx context.Context, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{ledger: l, ctx: ctx, logger: logger}
}

// Observe implements wrap.Observer.
func (r *Recorder) Observe(ev wrap.Event) {
	err := r.ledger.Record(r.ctx, ev)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.logger.Error("ledger write failed",
			"call_id", ev.CallID, "state", string(ev.State), "error", err)
		if r.err == nil {
			r.err = err
		}
		return
	}
	r.n++
}

// Err returns the first write failure.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Recorded returns the number of events written.
func (r *Recorder) Recorded() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}

var _ wrap.Observer = (*Recorder)(nil)

