// Package signature declares the parameter lists of wrapped functions and
// resolves which parameter receives a resource handle.
//
// Go functions carry no runtime-inspectable parameter names, so every wrapped
// function is described by an explicit Signature built at wrap time:
//
//	sig := signature.Of(
//		signature.Positional("header"),
//		signature.Positional("src"),
//		signature.Named("dst"),
//	)
//
// A Signature is compiled into an immutable Descriptor. The Descriptor keeps
// positional-or-named parameters in declaration order and named-only
// parameters as a set, mirroring how callers may supply each kind.
//
// # Specifiers
//
// Resolve maps a specifier onto an ArgSpec:
//   - any Go integer is an index into the positional parameters; negative
//     values count from the end
//   - a string names a parameter of either kind
//   - anything else is rejected
//
// Parameter names are compared after Unicode NFKC normalisation, so
// "ﬁle" and "file" denote the same parameter.
//
// Resolution is pure. It never sees call arguments.
package signature
