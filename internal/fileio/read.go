package fileio

import (
	"bufio"
	"errors"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// ErrDecoding is returned by reads under errors=strict when the file holds
// bytes that are not valid in its encoding.
var ErrDecoding = errors.New("invalid byte sequence")

// stageReader applies one transformer to src, writing straight into the
// caller's buffer. Every byte handed out therefore corresponds to source
// bytes already consumed, and the unconsumed rest is known exactly.
type stageReader struct {
	src     io.Reader
	t       transform.Transformer
	buf     []byte
	lo, hi  int
	eof     bool
	err     error
	pending []byte
}

func newStageReader(src io.Reader, t transform.Transformer) *stageReader {
	t.Reset()
	return &stageReader{src: src, t: t, buf: make([]byte, 4096)}
}

func (r *stageReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if len(r.pending) > 0 {
		n := copy(p, r.pending)
		r.pending = r.pending[n:]
		return n, nil
	}

	for {
		if r.lo < r.hi || r.eof {
			nDst, nSrc, err := r.t.Transform(p, r.buf[r.lo:r.hi], r.eof)
			r.lo += nSrc
			if nDst > 0 {
				return nDst, nil
			}
			switch err {
			case nil:
				if r.eof && (r.lo == r.hi || nSrc == 0) {
					return 0, io.EOF
				}
			case transform.ErrShortDst:
				// p cannot hold one output unit; hand it out piecewise.
				scratch := make([]byte, 4*utf8.UTFMax)
				nDst, nSrc, err = r.t.Transform(scratch, r.buf[r.lo:r.hi], r.eof)
				r.lo += nSrc
				if nDst > 0 {
					n := copy(p, scratch[:nDst])
					r.pending = scratch[n:nDst]
					return n, nil
				}
				if err == transform.ErrShortDst {
					return 0, io.ErrShortBuffer
				}
				if err != nil && err != transform.ErrShortSrc {
					return 0, err
				}
			case transform.ErrShortSrc:
				if r.eof {
					return 0, io.ErrUnexpectedEOF
				}
			default:
				return 0, err
			}
			if r.eof {
				continue
			}
		}
		if r.err != nil {
			return 0, r.err
		}
		r.fill()
	}
}

func (r *stageReader) fill() {
	if r.lo > 0 {
		r.hi = copy(r.buf, r.buf[r.lo:r.hi])
		r.lo = 0
	}
	if r.hi == len(r.buf) {
		r.buf = append(r.buf, make([]byte, len(r.buf))...)
	}
	n, err := r.src.Read(r.buf[r.hi:])
	r.hi += n
	if err == io.EOF {
		r.eof = true
	} else if err != nil {
		r.err = err
	}
}

// unread returns the source bytes pulled but not yet transformed.
func (r *stageReader) unread() []byte { return r.buf[r.lo:r.hi] }

func (r *stageReader) reset() {
	r.lo, r.hi = 0, 0
	r.eof = false
	r.err = nil
	r.pending = nil
	r.t.Reset()
}

// readPipe is the read side of a File: an optional buffer over the
// descriptor, then the decoding stages. The first stage consumes file
// bytes; later stages consume UTF-8.
type readPipe struct {
	src    io.Reader
	raw    *bufio.Reader
	stages []*stageReader
	enc    encoding.Encoding
	top    io.Reader
}

func newReadPipe(src io.Reader, cfg Config, size int) *readPipe {
	p := &readPipe{src: src, enc: cfg.enc}
	var r io.Reader = src
	if cfg.Buffering != 0 {
		p.raw = bufio.NewReaderSize(src, size)
		r = p.raw
	}
	for _, t := range cfg.readStages() {
		s := newStageReader(r, t)
		p.stages = append(p.stages, s)
		r = s
	}
	p.top = r
	return p
}

func (p *readPipe) Read(b []byte) (int, error) { return p.top.Read(b) }

// ahead counts the file bytes read from the descriptor but not yet
// delivered to the caller.
func (p *readPipe) ahead() int64 {
	var n int64
	if p.raw != nil {
		n += int64(p.raw.Buffered())
	}
	for i, s := range p.stages {
		left := s.unread()
		if i == 0 || p.enc == nil {
			n += int64(len(left))
			continue
		}
		if raw, err := p.enc.NewEncoder().Bytes(left); err == nil {
			n += int64(len(raw))
		} else {
			n += int64(len(left))
		}
	}
	return n
}

// discard drops everything read ahead; the next Read starts at the
// descriptor's current offset.
func (p *readPipe) discard() {
	if p.raw != nil {
		p.raw.Reset(p.src)
	}
	for _, s := range p.stages {
		s.reset()
	}
}

// readStages builds the read-side transformers, first stage first.
func (c Config) readStages() []transform.Transformer {
	if c.binary {
		return nil
	}
	var ts []transform.Transformer
	switch {
	case c.enc != nil && c.Errors == "strict":
		// x/text decoders substitute U+FFFD for bad input; strict
		// refuses the substitute.
		ts = append(ts, c.enc.NewDecoder(), validUTF8{rejectReplacement: true})
	case c.enc != nil:
		ts = append(ts, c.enc.NewDecoder())
	case c.Errors == "replace":
		ts = append(ts, runes.ReplaceIllFormed())
	default:
		ts = append(ts, validUTF8{})
	}
	if t := c.readTranslation(); t != nil {
		ts = append(ts, t)
	}
	return ts
}

// validUTF8 passes well-formed UTF-8 through and fails with ErrDecoding
// on anything else.
type validUTF8 struct {
	transform.NopResetter
	rejectReplacement bool
}

func (v validUTF8) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		if c := src[nSrc]; c < utf8.RuneSelf {
			if nDst >= len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			dst[nDst] = c
			nDst++
			nSrc++
			continue
		}
		r, size := utf8.DecodeRune(src[nSrc:])
		if r == utf8.RuneError && size <= 1 {
			if !atEOF && !utf8.FullRune(src[nSrc:]) {
				return nDst, nSrc, transform.ErrShortSrc
			}
			return nDst, nSrc, ErrDecoding
		}
		if r == utf8.RuneError && v.rejectReplacement {
			return nDst, nSrc, ErrDecoding
		}
		if nDst+size > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		nDst += copy(dst[nDst:], src[nSrc:nSrc+size])
		nSrc += size
	}
	return nDst, nSrc, nil
}
