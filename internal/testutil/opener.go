package testutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/roach88/fnfn/internal/fileio"
)

// MemHandle is an in-memory handle handed out by RecordingOpener.
// It counts Close calls instead of refusing the second one so tests can
// assert release happened exactly once.
type MemHandle struct {
	Name string
	Cfg  fileio.Config

	mu       sync.Mutex
	buf      bytes.Buffer
	closes   int
	closeErr error
}

// Read implements io.Reader.
func (h *MemHandle) Read(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closes > 0 {
		return 0, &fs.PathError{Op: "read", Path: h.Name, Err: os.ErrClosed}
	}
	return h.buf.Read(p)
}

// Write implements io.Writer.
func (h *MemHandle) Write(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closes > 0 {
		return 0, &fs.PathError{Op: "write", Path: h.Name, Err: os.ErrClosed}
	}
	return h.buf.Write(p)
}

// Close records the call and returns the configured close error.
func (h *MemHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closes++
	return h.closeErr
}

// Closes returns how many times Close was called.
func (h *MemHandle) Closes() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closes
}

// Contents returns the unread bytes (or everything written).
func (h *MemHandle) Contents() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.buf.String()
}

// RecordingOpener is an in-memory open primitive that remembers every
// handle it produced. Its Open method has the shape of wrap.OpenFunc.
//
// Thread-safety: all methods are safe for concurrent use.
type RecordingOpener struct {
	mu       sync.Mutex
	files    map[string]string
	failOpen map[string]error
	closeErr map[string]error
	handles  []*MemHandle
}

// NewRecordingOpener creates an opener whose resources have the given
// initial contents. Names not in files open as empty.
func NewRecordingOpener(files map[string]string) *RecordingOpener {
	if files == nil {
		files = map[string]string{}
	}
	return &RecordingOpener{
		files:    files,
		failOpen: map[string]error{},
		closeErr: map[string]error{},
	}
}

// FailOpen makes opening name fail with err.
func (o *RecordingOpener) FailOpen(name string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failOpen[name] = err
}

// FailClose makes closing handles for name return err.
func (o *RecordingOpener) FailClose(name string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closeErr[name] = err
}

// Open implements wrap.OpenFunc.
func (o *RecordingOpener) Open(ctx context.Context, name string, cfg fileio.Config) (io.Closer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if err, ok := o.failOpen[name]; ok {
		return nil, err
	}
	h := &MemHandle{Name: name, Cfg: cfg, closeErr: o.closeErr[name]}
	if cfg.Readable() {
		h.buf.WriteString(o.files[name])
	}
	o.handles = append(o.handles, h)
	return h, nil
}

// Handles returns every handle opened so far, in order.
func (o *RecordingOpener) Handles() []*MemHandle {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]*MemHandle(nil), o.handles...)
}

// Handle returns the only handle opened for name.
func (o *RecordingOpener) Handle(name string) (*MemHandle, error) {
	var found *MemHandle
	for _, h := range o.Handles() {
		if h.Name != name {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("%q opened more than once", name)
		}
		found = h
	}
	if found == nil {
		return nil, errors.New("never opened: " + name)
	}
	return found, nil
}

// OpenCount returns the number of handles opened.
func (o *RecordingOpener) OpenCount() int {
	return len(o.Handles())
}
