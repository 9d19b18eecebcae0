package fileio

import "io"

// PathLike is implemented by values that name a file without being a
// string.
type PathLike interface {
	FSPath() string
}

// Path is a string-backed PathLike.
type Path string

// FSPath implements PathLike.
func (p Path) FSPath() string { return string(p) }

// IsOpenHandle reports whether v is already an open resource handle: an
// io.Closer that can be read from or written to.
func IsOpenHandle(v any) bool {
	if _, ok := v.(io.Closer); !ok {
		return false
	}
	switch v.(type) {
	case io.Reader, io.Writer:
		return true
	default:
		return false
	}
}

// NameOf extracts a resource name from string-like and path-like values.
func NameOf(v any) (string, bool) {
	switch n := v.(type) {
	case string:
		return n, true
	case []byte:
		return string(n), true
	case PathLike:
		return n.FSPath(), true
	default:
		return "", false
	}
}

// IsValidName reports whether NameOf accepts v.
func IsValidName(v any) bool {
	_, ok := NameOf(v)
	return ok
}
