package wrap

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"github.com/roach88/fnfn/internal/fileio"
	"github.com/roach88/fnfn/internal/signature"
)

// Func is a wrapped function returning a single result.
type Func func(ctx context.Context, args Args) (any, error)

// Producer is a wrapped function yielding values lazily.
type Producer func(ctx context.Context, args Args) iter.Seq2[any, error]

// Wrapper is a callable proxy that accepts a resource name wherever its
// function expects an open handle.
//
// A Wrapper is immutable after Wrap and may be called any number of times.
// Each call owns its own handle; calls share nothing but configuration.
type Wrapper struct {
	call    Func
	produce Producer

	desc *signature.Descriptor
	spec signature.ArgSpec
	cfg  fileio.Config

	open     OpenFunc
	isHandle func(any) bool
	nameOf   func(any) (string, bool)
	logger   *slog.Logger
	observer Observer
	ids      IDGenerator
	name     string
}

// Wrap builds a Wrapper around target, which must be a Func or a Producer
// (or a plain function of either shape). sig declares target's parameters.
//
// Every configuration error is reported here, before any call:
//   - NOT_CALLABLE / NOT_COMPOSABLE for an unusable target
//   - fileio INVALID_OPTION / INVALID_OPTION_VALUE for open options
//   - signature errors for the declaration and the parameter specifier
func Wrap(target any, sig signature.Signature, opts ...Option) (*Wrapper, error) {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}

	call, produce, err := callableOf(target, s.name)
	if err != nil {
		return nil, err
	}

	cfg, err := fileio.ParseOptions(s.open)
	if err != nil {
		return nil, err
	}

	desc, err := signature.NewDescriptor(sig, produce != nil)
	if err != nil {
		return nil, err
	}
	spec, err := desc.Resolve(s.param)
	if err != nil {
		return nil, err
	}

	logger := s.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Wrapper{
		call:     call,
		produce:  produce,
		desc:     desc,
		spec:     spec,
		cfg:      cfg,
		open:     s.opener,
		isHandle: s.isHandle,
		nameOf:   s.nameOf,
		logger:   logger,
		observer: s.observer,
		ids:      s.ids,
		name:     s.name,
	}, nil
}

// MustWrap is like Wrap but panics on error. Intended for package-level
// wrappers whose configuration is fixed at compile time.
func MustWrap(target any, sig signature.Signature, opts ...Option) *Wrapper {
	w, err := Wrap(target, sig, opts...)
	if err != nil {
		panic(fmt.Sprintf("wrap: %v", err))
	}
	return w
}

func callableOf(target any, name string) (Func, Producer, error) {
	switch fn := target.(type) {
	case *Wrapper:
		return nil, nil, &Error{
			Code:     ErrCodeNotComposable,
			Message:  "a wrapper cannot be wrapped directly; stack layers with Callable()",
			Function: name,
		}
	case Func:
		if fn != nil {
			return fn, nil, nil
		}
	case func(context.Context, Args) (any, error):
		if fn != nil {
			return fn, nil, nil
		}
	case Producer:
		if fn != nil {
			return nil, fn, nil
		}
	case func(context.Context, Args) iter.Seq2[any, error]:
		if fn != nil {
			return nil, fn, nil
		}
	}
	return nil, nil, &Error{
		Code:     ErrCodeNotCallable,
		Message:  fmt.Sprintf("expected a Func or Producer, got %T", target),
		Function: name,
	}
}

// Name returns the function name given with WithName.
func (w *Wrapper) Name() string { return w.name }

// Descriptor returns the compiled parameter declaration.
func (w *Wrapper) Descriptor() *signature.Descriptor { return w.desc }

// Spec returns the resolved handle parameter.
func (w *Wrapper) Spec() signature.ArgSpec { return w.spec }

// OpenConfig returns the validated open options.
func (w *Wrapper) OpenConfig() fileio.Config { return w.cfg }

// IsLazy reports whether the wrapped function is a Producer.
func (w *Wrapper) IsLazy() bool { return w.produce != nil }

// Call invokes the wrapped function.
//
// For a Func the result is the function's result. For a Producer the result
// is an iter.Seq2[any, error]; a name argument is opened when iteration
// starts and closed when it ends, and each iteration is an independent run.
//
// Errors from binding or classification are returned before anything is
// opened. Errors from the open primitive or the function are returned
// unchanged after the handle is released.
func (w *Wrapper) Call(ctx context.Context, args Args) (any, error) {
	return w.invoke(ctx, args, nil)
}

// invoke is Call with an optional sink for a lazy run's close error after
// early abandonment; without one that error is logged.
func (w *Wrapper) invoke(ctx context.Context, args Args, abandoned *closeSink) (any, error) {
	bound, err := Bind(w.desc, args)
	if err != nil {
		var we *Error
		if errors.As(err, &we) {
			we.Function = w.name
		}
		return nil, err
	}

	loc, ok := locate(w.spec, bound)
	if !ok {
		return w.delegate(ctx, bound)
	}

	c := Classify(loc.get(bound), w.isHandle, w.nameOf)
	switch c.Kind {
	case KindAlreadyOpen:
		return w.delegate(ctx, bound)
	case KindName:
		if w.produce != nil {
			return w.lazy(ctx, bound, loc, c.Name, abandoned), nil
		}
		return w.scoped(ctx, bound, loc, c.Name)
	default:
		return nil, &Error{
			Code:     ErrCodeUnsupportedArgumentType,
			Message:  fmt.Sprintf("%T at %s is neither an open handle nor a resource name", c.Value, loc),
			Function: w.name,
			Param:    w.spec.Name,
		}
	}
}

// Iter is Call for Producers with the result already typed.
func (w *Wrapper) Iter(ctx context.Context, args Args) (iter.Seq2[any, error], error) {
	if w.produce == nil {
		return nil, w.notProducer()
	}
	res, err := w.Call(ctx, args)
	if err != nil {
		return nil, err
	}
	return res.(iter.Seq2[any, error]), nil
}

// Stream is Iter wrapped in an explicit-close Stream. A close failure after
// the stream is abandoned is returned by Stream.Close instead of logged.
func (w *Wrapper) Stream(ctx context.Context, args Args) (*Stream, error) {
	if w.produce == nil {
		return nil, w.notProducer()
	}
	sink := &closeSink{}
	res, err := w.invoke(ctx, args, sink)
	if err != nil {
		return nil, err
	}
	s := NewStream(res.(iter.Seq2[any, error]))
	s.abandoned = sink
	return s, nil
}

func (w *Wrapper) notProducer() error {
	return &Error{
		Code:     ErrCodeNotProducer,
		Message:  "function returns a single value",
		Function: w.name,
	}
}

// Callable returns the wrapper as a Func or Producer (matching the wrapped
// function) so it can be wrapped again for a second handle parameter.
func (w *Wrapper) Callable() any {
	if w.produce != nil {
		return Producer(w.iterate)
	}
	return Func(w.Call)
}

// iterate adapts Iter to the Producer shape, reporting call errors as the
// sequence's only element.
func (w *Wrapper) iterate(ctx context.Context, args Args) iter.Seq2[any, error] {
	seq, err := w.Iter(ctx, args)
	if err != nil {
		return func(yield func(any, error) bool) {
			yield(nil, err)
		}
	}
	return seq
}

// delegate invokes the function without any handle management.
func (w *Wrapper) delegate(ctx context.Context, bound Args) (any, error) {
	if w.produce != nil {
		return w.produce(ctx, bound), nil
	}
	return w.call(ctx, bound)
}

// scoped opens name, substitutes it, invokes the function and releases the
// handle on every exit path, panics included.
func (w *Wrapper) scoped(ctx context.Context, bound Args, loc location, name string) (result any, err error) {
	l, err := w.acquire(ctx, name, false)
	if err != nil {
		return nil, err
	}
	defer func() {
		cerr := l.release()
		if cerr == nil {
			return
		}
		if err == nil {
			err = cerr
			return
		}
		w.logger.Error("close failed after call error",
			"call_id", l.callID, "function", w.name, "resource", name, "error", cerr)
	}()

	loc.set(bound, l.handle)
	return w.call(ctx, bound)
}
