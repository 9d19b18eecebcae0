package fileio

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync/atomic"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// ErrUnsupportedOperation is returned when reading a write-only file or
// writing a read-only one.
var ErrUnsupportedOperation = errors.New("unsupported operation")

// File is an open handle produced by Open.
//
// Thread-safety: File is owned by one call at a time and is not safe for
// concurrent use.
type File struct {
	name string
	cfg  Config
	f    *os.File

	rp *readPipe
	w  io.Writer
	bw *bufio.Writer
	tw *transform.Writer

	closed atomic.Bool
}

// Open opens name under cfg. A zero Config behaves like DefaultConfig.
func Open(ctx context.Context, name string, cfg Config) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg.Mode == "" {
		cfg = DefaultConfig()
	}
	if !cfg.CloseFD {
		return nil, &fs.PathError{Op: "open", Path: name, Err: errors.New("cannot use closefd=false with a file name")}
	}

	openFile := os.OpenFile
	if cfg.Opener != nil {
		openFile = cfg.Opener
	}
	f, err := openFile(name, cfg.flag, 0o666)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: errors.New("opener returned no file")}
	}

	if cfg.readable && cfg.flag&os.O_APPEND != 0 {
		// a+ starts reading at the end, where the next write lands.
		if _, err := f.Seek(0, io.SeekEnd); err != nil {
			f.Close()
			return nil, err
		}
	}

	return newFile(name, f, cfg), nil
}

func newFile(name string, f *os.File, cfg Config) *File {
	file := &File{name: name, cfg: cfg, f: f}

	size := cfg.Buffering
	if size < 2 {
		size = 4096
	}

	if cfg.readable {
		file.rp = newReadPipe(f, cfg, size)
	}

	if cfg.writable {
		var w io.Writer = f
		if cfg.Buffering != 0 {
			file.bw = bufio.NewWriterSize(f, size)
			w = file.bw
		}
		if t := cfg.encoder(); t != nil {
			file.tw = transform.NewWriter(w, t)
			w = file.tw
		}
		file.w = w
	}

	return file
}

// Name returns the name the file was opened with.
func (f *File) Name() string { return f.name }

// Config returns the options the file was opened with.
func (f *File) Config() Config { return f.cfg }

// Closed reports whether Close has been called.
func (f *File) Closed() bool { return f.closed.Load() }

// Read implements io.Reader.
func (f *File) Read(p []byte) (int, error) {
	if f.closed.Load() {
		return 0, &fs.PathError{Op: "read", Path: f.name, Err: os.ErrClosed}
	}
	if f.rp == nil {
		return 0, &fs.PathError{Op: "read", Path: f.name, Err: ErrUnsupportedOperation}
	}
	if f.bw != nil && f.bw.Buffered() > 0 {
		if err := f.bw.Flush(); err != nil {
			return 0, err
		}
	}
	n, err := f.rp.Read(p)
	if errors.Is(err, ErrDecoding) {
		err = &fs.PathError{Op: "read", Path: f.name, Err: fmt.Errorf("%w for %s", err, f.cfg.Encoding)}
	}
	return n, err
}

// Write implements io.Writer.
func (f *File) Write(p []byte) (int, error) {
	if f.closed.Load() {
		return 0, &fs.PathError{Op: "write", Path: f.name, Err: os.ErrClosed}
	}
	if f.w == nil {
		return 0, &fs.PathError{Op: "write", Path: f.name, Err: ErrUnsupportedOperation}
	}
	if f.rp != nil {
		if err := f.rewind(); err != nil {
			return 0, err
		}
	}
	n, err := f.w.Write(p)
	if err != nil {
		return n, err
	}
	if f.cfg.Buffering == 1 && f.bw != nil && bytes.IndexByte(p, '\n') >= 0 {
		return n, f.bw.Flush()
	}
	return n, nil
}

// rewind moves the descriptor back over read-ahead so a write in a "+"
// mode lands right after the last byte the caller read.
func (f *File) rewind() error {
	if n := f.rp.ahead(); n > 0 {
		if _, err := f.f.Seek(-n, io.SeekCurrent); err != nil {
			return &fs.PathError{Op: "seek", Path: f.name, Err: err}
		}
	}
	f.rp.discard()
	return nil
}

// WriteString implements io.StringWriter.
func (f *File) WriteString(s string) (int, error) {
	return f.Write([]byte(s))
}

// Close flushes pending output and closes the descriptor. Only the first
// call has any effect; later calls report os.ErrClosed.
func (f *File) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return &fs.PathError{Op: "close", Path: f.name, Err: os.ErrClosed}
	}

	var errs []error
	if f.tw != nil {
		errs = append(errs, f.tw.Close())
	}
	if f.bw != nil {
		errs = append(errs, f.bw.Flush())
	}
	errs = append(errs, f.f.Close())
	return errors.Join(errs...)
}

// String implements fmt.Stringer.
func (f *File) String() string {
	return fmt.Sprintf("<file %q %s>", f.name, f.cfg.Mode)
}

// encoder builds the write-side transformer chain, or nil.
func (c Config) encoder() transform.Transformer {
	if c.binary {
		return nil
	}
	var ts []transform.Transformer
	if t := c.writeTranslation(); t != nil {
		ts = append(ts, t)
	}
	if c.enc != nil {
		e := c.enc.NewEncoder()
		if c.Errors == "replace" {
			e = encoding.ReplaceUnsupported(e)
		}
		ts = append(ts, e)
	}
	return chain(ts)
}

func chain(ts []transform.Transformer) transform.Transformer {
	switch len(ts) {
	case 0:
		return nil
	case 1:
		return ts[0]
	default:
		return transform.Chain(ts...)
	}
}
