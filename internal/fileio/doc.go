// Package fileio is the default open primitive used by the wrapper.
//
// It opens local files by name under a validated option set modelled on the
// classic open() parameters:
//
//	mode       "r" | "w" | "x" | "a", optional "+", optional "b" or "t"
//	buffering  -1 default, 0 unbuffered (binary), 1 line buffered (text), >1 size
//	encoding   any WHATWG label known to x/text/encoding/htmlindex (text only)
//	errors     "strict" | "replace" (text only)
//	newline    unset, "", "\n", "\r", "\r\n" (text only)
//	closefd    must be true when opening by name
//	opener     OpenerFunc replacing os.OpenFile
//
// Options are validated once by ParseOptions, so a misconfigured caller fails
// before any file is touched. The resulting Config is immutable and may be
// shared by any number of Open calls.
//
// Text decoding and newline translation are x/text transformers chained in
// front of a bufio layer. File.Close flushes that chain and closes the
// descriptor exactly once.
package fileio
