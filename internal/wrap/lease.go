package wrap

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"sync/atomic"
)

// lease owns one handle opened by the wrapper.
//
// INVARIANTS:
//   - state only moves Unopened → Open → Closed
//   - the handle is closed by the single release that wins the Open → Closed
//     transition; every other release is a no-op
type lease struct {
	w      *Wrapper
	callID string
	name   string
	lazy   bool
	handle io.Closer
	state  atomic.Int32
}

const (
	leaseUnopened int32 = iota
	leaseOpen
	leaseClosed
)

// acquire opens name and returns a lease in the Open state.
func (w *Wrapper) acquire(ctx context.Context, name string, lazy bool) (*lease, error) {
	l := &lease{w: w, name: name, lazy: lazy}

	h, err := w.open(ctx, name, w.cfg)
	if err != nil {
		w.logger.Debug("open failed",
			"function", w.name, "param", w.spec.Name, "resource", name, "error", err)
		return nil, err
	}
	if h == nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: errors.New("opener returned no handle")}
	}

	l.callID = w.ids.Generate()
	l.handle = h
	l.state.Store(leaseOpen)
	w.logger.Debug("resource opened",
		"call_id", l.callID, "function", w.name, "param", w.spec.Name, "resource", name, "lazy", lazy)
	l.emit(StateOpen, nil)

	return l, nil
}

// release closes the handle if this is the first release.
func (l *lease) release() error {
	if !l.state.CompareAndSwap(leaseOpen, leaseClosed) {
		return nil
	}

	err := l.handle.Close()
	l.w.logger.Debug("resource closed",
		"call_id", l.callID, "function", l.w.name, "param", l.w.spec.Name, "resource", l.name, "error", err)
	l.emit(StateClosed, err)
	return err
}

// State reports the lease's current state.
func (l *lease) State() HandleState {
	switch l.state.Load() {
	case leaseOpen:
		return StateOpen
	case leaseClosed:
		return StateClosed
	default:
		return StateUnopened
	}
}

func (l *lease) emit(state HandleState, err error) {
	if l.w.observer == nil {
		return
	}
	l.w.observer.Observe(Event{
		CallID:   l.callID,
		Function: l.w.name,
		Param:    l.w.spec.Name,
		Resource: l.name,
		State:    state,
		Lazy:     l.lazy,
		Err:      err,
	})
}
