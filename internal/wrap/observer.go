package wrap

import (
	"sync"

	"github.com/google/uuid"
)

// HandleState is a point in a handle's lifecycle.
type HandleState string

const (
	StateUnopened HandleState = "unopened"
	StateOpen     HandleState = "open"
	StateClosed   HandleState = "closed"
)

// Event records one lifecycle transition of a handle opened by a wrapper.
type Event struct {
	// CallID identifies the call (or lazy run) that owns the handle.
	CallID string

	// Function is the wrapper's function name.
	Function string

	// Param is the handle parameter name.
	Param string

	// Resource is the name the handle was opened from.
	Resource string

	// State is the state entered.
	State HandleState

	// Lazy is true for handles held across a lazy sequence.
	Lazy bool

	// Err is the close error, if any.
	Err error
}

// Observer receives lifecycle events. Observe is called synchronously on
// the calling goroutine.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Observe implements Observer.
func (f ObserverFunc) Observe(ev Event) { f(ev) }

// IDGenerator produces call IDs for lifecycle events.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 call IDs.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined call IDs for testing.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined ID.
//
// Panics if all IDs have been consumed, so a test that opens more handles
// than it expected fails loudly.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
