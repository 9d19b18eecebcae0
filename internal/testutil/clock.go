package testutil

import (
	"slices"
	"sync"
)

// SeqClock is a ledger.Sequencer for tests that starts wherever the test
// asks and remembers every seq it issued.
//
// Rewind lets one scenario be replayed against a fresh ledger with
// identical seq columns; Issued lets a test compare the ledger's rows with
// the order the clock was consulted.
type SeqClock struct {
	mu     sync.Mutex
	start  int64
	last   int64
	issued []int64
}

// NewSeqClock returns a clock whose first Next is 1.
func NewSeqClock() *SeqClock {
	return NewSeqClockFrom(1)
}

// NewSeqClockFrom returns a clock whose first Next is first.
func NewSeqClockFrom(first int64) *SeqClock {
	return &SeqClock{start: first - 1, last: first - 1}
}

func (c *SeqClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last++
	c.issued = append(c.issued, c.last)
	return c.last
}

// Current is the last seq issued, or one before the first when none was.
func (c *SeqClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Issued returns a copy of every seq handed out since the last Rewind.
func (c *SeqClock) Issued() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.issued)
}

// Rewind returns the clock to its starting point and forgets Issued.
func (c *SeqClock) Rewind() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = c.start
	c.issued = nil
}
