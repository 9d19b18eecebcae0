package wrap

import (
	"context"
	"iter"
	"sync"
)

// lazy returns a sequence that holds name open for exactly one run of the
// producer.
//
// The handle is released after the producer finishes, never between a
// value and its delivery. If the consumer stops early the deferred release
// runs when the range loop (or Stream.Close) unwinds the sequence; its
// error goes to abandoned when set and is logged otherwise.
func (w *Wrapper) lazy(ctx context.Context, bound Args, loc location, name string, abandoned *closeSink) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		run := bound.clone()

		l, err := w.acquire(ctx, name, true)
		if err != nil {
			yield(nil, err)
			return
		}
		defer func() {
			err := l.release()
			if err == nil {
				return
			}
			if abandoned != nil {
				abandoned.set(err)
				return
			}
			w.logger.Warn("close failed after early stop",
				"call_id", l.callID, "function", w.name, "resource", name, "error", err)
		}()

		loc.set(run, l.handle)
		for v, err := range w.produce(ctx, run) {
			if !yield(v, err) {
				return
			}
		}

		if err := l.release(); err != nil {
			yield(nil, err)
		}
	}
}

// closeSink receives the close error of an abandoned run.
type closeSink struct {
	mu  sync.Mutex
	err error
}

func (c *closeSink) set(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

func (c *closeSink) take() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.err
	c.err = nil
	return err
}

// Stream is a pull-style view of a lazy sequence with explicit disposal.
//
// Typical use:
//
//	s, err := w.Stream(ctx, wrap.Pos("numbers.txt"))
//	if err != nil { ... }
//	defer s.Close()
//	for s.Next() {
//		use(s.Value())
//	}
//	if err := s.Err(); err != nil { ... }
//
// The first element error ends the stream and is reported by Err. Close
// abandons the sequence, releasing any handle it holds; it is safe to call
// more than once.
//
// For a Stream from Wrapper.Stream, Close returns the error of closing a
// handle the stream gave up early (after Close or an element error); later
// calls return nil. A close error at normal exhaustion is reported by Err.
type Stream struct {
	next      func() (any, error, bool)
	stop      func()
	val       any
	err       error
	done      bool
	abandoned *closeSink
}

// NewStream starts pulling from seq.
func NewStream(seq iter.Seq2[any, error]) *Stream {
	next, stop := iter.Pull2(seq)
	return &Stream{next: next, stop: stop}
}

// Next advances to the next value. It returns false at the end of the
// sequence, after an error, or after Close.
func (s *Stream) Next() bool {
	if s.done {
		return false
	}
	v, err, ok := s.next()
	if !ok {
		s.finish()
		return false
	}
	if err != nil {
		s.err = err
		s.finish()
		return false
	}
	s.val = v
	return true
}

// Value returns the current value.
func (s *Stream) Value() any { return s.val }

// Err returns the error that ended the stream, if any.
func (s *Stream) Err() error { return s.err }

// Close abandons the stream.
func (s *Stream) Close() error {
	s.finish()
	if s.abandoned == nil {
		return nil
	}
	return s.abandoned.take()
}

func (s *Stream) finish() {
	if s.done {
		return
	}
	s.done = true
	s.val = nil
	s.stop()
}
