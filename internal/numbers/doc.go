// Package numbers holds the integer-file functions the CLI exposes, each
// written against an open handle and wrapped so callers can pass a path.
package numbers
