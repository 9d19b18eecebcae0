package fileio

import (
	"golang.org/x/text/transform"
)

// universalNewlines rewrites "\r\n" and lone "\r" to "\n" on read.
type universalNewlines struct {
	transform.NopResetter
}

func (universalNewlines) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		c := src[nSrc]
		if c == '\r' {
			// A trailing '\r' may be the first half of "\r\n".
			if nSrc+1 >= len(src) && !atEOF {
				return nDst, nSrc, transform.ErrShortSrc
			}
			if nDst >= len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			dst[nDst] = '\n'
			nDst++
			nSrc++
			if nSrc < len(src) && src[nSrc] == '\n' {
				nSrc++
			}
			continue
		}
		if nDst >= len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		dst[nDst] = c
		nDst++
		nSrc++
	}
	return nDst, nSrc, nil
}

// newlineEncoder rewrites "\n" to seq on write.
type newlineEncoder struct {
	transform.NopResetter
	seq []byte
}

func (t newlineEncoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		c := src[nSrc]
		if c == '\n' {
			if nDst+len(t.seq) > len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			nDst += copy(dst[nDst:], t.seq)
			nSrc++
			continue
		}
		if nDst >= len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		dst[nDst] = c
		nDst++
		nSrc++
	}
	return nDst, nSrc, nil
}

// readTranslation returns the newline transformer for reading, or nil.
func (c Config) readTranslation() transform.Transformer {
	if c.NewlineSet {
		return nil
	}
	return universalNewlines{}
}

// writeTranslation returns the newline transformer for writing, or nil.
func (c Config) writeTranslation() transform.Transformer {
	if !c.NewlineSet {
		return nil
	}
	switch c.Newline {
	case "\r", "\r\n":
		return newlineEncoder{seq: []byte(c.Newline)}
	default:
		return nil
	}
}
