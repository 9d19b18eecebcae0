// Package wrap lets a function that takes an open handle be called with a
// resource name instead.
//
// A wrapped function declares its parameters explicitly (see package
// signature) and names the handle parameter with a specifier:
//
//	sum, err := wrap.Wrap(wrap.Func(sumInts),
//		signature.Of(signature.Positional("src")),
//		wrap.WithParam("src"),
//	)
//	total, err := sum.Call(ctx, wrap.Pos("numbers.txt"))
//
// Each call binds the arguments against the declared parameters, finds the
// handle argument wherever the caller supplied it, and classifies it:
//
//   - an open handle is passed through and stays owned by the caller
//   - a name (string, []byte or fileio.PathLike) is opened, substituted,
//     and closed when the call returns
//   - anything else fails with UNSUPPORTED_ARGUMENT_TYPE before any open
//
// # Lifecycle
//
// Every handle the wrapper opens moves Unopened → Open → Closed exactly
// once. Release runs on normal return, on error, and on panic. Errors from
// the wrapped function are returned unchanged after release.
//
// # Lazy producers
//
// A Producer yields values through an iter.Seq2. Its handle must stay open
// across resumptions, so the wrapper returns a new sequence that opens on
// first demand, forwards every element, and closes once the producer is
// exhausted or the consumer stops early. Stream adapts such a sequence into
// an explicit Next/Close object for consumers that cannot use range.
//
// # Composition
//
// A Wrapper owns exactly one handle parameter. Passing a *Wrapper to Wrap is
// rejected with NOT_COMPOSABLE; stacking is explicit through
// Wrapper.Callable, with each layer owning its own parameter.
package wrap
