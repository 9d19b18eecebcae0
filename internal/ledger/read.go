package ledger

import (
	"context"
	"fmt"

	"github.com/roach88/fnfn/internal/wrap"
)

// Entry is one stored transition.
type Entry struct {
	Seq      int64            `json:"seq"`
	CallID   string           `json:"call_id"`
	Function string           `json:"function"`
	Param    string           `json:"param"`
	Resource string           `json:"resource"`
	State    wrap.HandleState `json:"state"`
	Lazy     bool             `json:"lazy,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// Call summarizes one wrapper call that opened a resource.
type Call struct {
	CallID   string `json:"call_id"`
	Function string `json:"function"`
	Param    string `json:"param"`
	Resource string `json:"resource"`
	Lazy     bool   `json:"lazy,omitempty"`

	// OpenSeq is the seq of the open row.
	OpenSeq int64 `json:"open_seq"`

	// CloseSeq is the seq of the close row, 0 while the handle is open.
	CloseSeq int64 `json:"close_seq"`

	// CloseError is the recorded close failure, if any.
	CloseError string `json:"close_error,omitempty"`
}

// Leaked reports whether the call has no close row.
func (c Call) Leaked() bool {
	return c.CloseSeq == 0
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Events returns the transitions for callID ordered by seq, or every
// transition when callID is empty.
//
// Returns an empty slice (not nil) if nothing matches.
func (l *Ledger) Events(ctx context.Context, callID string) ([]Entry, error) {
	query := `
		SELECT seq, call_id, function, param, resource, state, lazy, error
		FROM handle_events
		WHERE (? = '' OR call_id = ?)
		ORDER BY seq ASC
	`
	rows, err := l.db.QueryContext(ctx, query, callID, callID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return entries, nil
}

// Calls returns one summary per opened call, ordered by open seq.
func (l *Ledger) Calls(ctx context.Context) ([]Call, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT o.call_id, o.function, o.param, o.resource, o.lazy, o.seq,
		       COALESCE(c.seq, 0), COALESCE(c.error, '')
		FROM handle_events o
		LEFT JOIN handle_events c ON c.call_id = o.call_id AND c.state = 'closed'
		WHERE o.state = 'open'
		ORDER BY o.seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query calls: %w", err)
	}
	defer rows.Close()

	calls := []Call{}
	for rows.Next() {
		var c Call
		if err := rows.Scan(&c.CallID, &c.Function, &c.Param, &c.Resource, &c.Lazy,
			&c.OpenSeq, &c.CloseSeq, &c.CloseError); err != nil {
			return nil, fmt.Errorf("scan call: %w", err)
		}
		calls = append(calls, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calls: %w", err)
	}

	return calls, nil
}

// Leaks returns the calls whose handle was opened and never closed.
func (l *Ledger) Leaks(ctx context.Context) ([]Call, error) {
	calls, err := l.Calls(ctx)
	if err != nil {
		return nil, err
	}
	leaks := []Call{}
	for _, c := range calls {
		if c.Leaked() {
			leaks = append(leaks, c)
		}
	}
	return leaks, nil
}

func scanEntry(s scanner) (Entry, error) {
	var e Entry
	var state string
	if err := s.Scan(&e.Seq, &e.CallID, &e.Function, &e.Param, &e.Resource, &state, &e.Lazy, &e.Error); err != nil {
		return Entry{}, fmt.Errorf("scan event: %w", err)
	}
	e.State = wrap.HandleState(state)
	return e, nil
}
