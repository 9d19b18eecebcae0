package wrap

import (
	"context"
	"iter"
)

// Method binds a receiver to a method expression, producing a Func whose
// declared signature excludes the receiver:
//
//	w, err := wrap.Wrap(wrap.Method(c, (*Collection).Load),
//		signature.Of(signature.Positional("src")))
func Method[R any](recv R, fn func(R, context.Context, Args) (any, error)) Func {
	if fn == nil {
		return nil
	}
	return func(ctx context.Context, args Args) (any, error) {
		return fn(recv, ctx, args)
	}
}

// ProducerMethod is Method for lazy methods.
func ProducerMethod[R any](recv R, fn func(R, context.Context, Args) iter.Seq2[any, error]) Producer {
	if fn == nil {
		return nil
	}
	return func(ctx context.Context, args Args) iter.Seq2[any, error] {
		return fn(recv, ctx, args)
	}
}
