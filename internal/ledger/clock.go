package ledger

import "sync/atomic"

// Sequencer hands out strictly increasing seq numbers.
// Implemented by Clock (production) and testutil.SeqClock (tests).
type Sequencer interface {
	Next() int64
}

// Clock is a monotonic logical clock for ledger rows.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock that resumes after start.
// Open uses it to continue from the highest seq already on disk.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
