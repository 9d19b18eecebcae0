package fileio

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// Recognized option keys.
const (
	OptMode      = "mode"
	OptBuffering = "buffering"
	OptEncoding  = "encoding"
	OptErrors    = "errors"
	OptNewline   = "newline"
	OptCloseFD   = "closefd"
	OptOpener    = "opener"
)

// RecognizedOptions lists every key accepted by ParseOptions, in the order
// open() declares them.
var RecognizedOptions = []string{
	OptMode, OptBuffering, OptEncoding, OptErrors, OptNewline, OptCloseFD, OptOpener,
}

// Options is the raw option mapping supplied at wrap time.
type Options map[string]any

// OpenerFunc replaces os.OpenFile for custom low-level opening.
type OpenerFunc func(name string, flag int, perm os.FileMode) (*os.File, error)

// Config is a validated option set.
type Config struct {
	// Mode is the mode string as given (default "r").
	Mode string

	// Buffering is the requested buffer policy.
	Buffering int

	// Encoding is the canonical encoding name, empty for binary files.
	Encoding string

	// Errors is the encoding error policy, empty for binary files.
	Errors string

	// Newline is the newline policy; only meaningful when NewlineSet.
	Newline    string
	NewlineSet bool

	// CloseFD mirrors the closefd option.
	CloseFD bool

	// Opener overrides os.OpenFile when non-nil.
	Opener OpenerFunc

	flag     int
	readable bool
	writable bool
	binary   bool
	enc      encoding.Encoding
}

// DefaultConfig returns the Config of an empty option set.
func DefaultConfig() Config {
	cfg, err := ParseOptions(nil)
	if err != nil {
		panic(fmt.Sprintf("fileio: default options invalid: %v", err))
	}
	return cfg
}

// Readable reports whether files opened with this config can be read.
func (c Config) Readable() bool { return c.readable }

// Writable reports whether files opened with this config can be written.
func (c Config) Writable() bool { return c.writable }

// Binary reports whether files are opened without text translation.
func (c Config) Binary() bool { return c.binary }

// String renders the config as a compact option list.
func (c Config) String() string {
	parts := []string{fmt.Sprintf("mode=%s", c.Mode)}
	if c.Buffering != -1 {
		parts = append(parts, fmt.Sprintf("buffering=%d", c.Buffering))
	}
	if c.Encoding != "" {
		parts = append(parts, "encoding="+c.Encoding)
	}
	if c.Errors != "" && c.Errors != "strict" {
		parts = append(parts, "errors="+c.Errors)
	}
	if c.NewlineSet {
		parts = append(parts, fmt.Sprintf("newline=%q", c.Newline))
	}
	if c.Opener != nil {
		parts = append(parts, "opener=custom")
	}
	return strings.Join(parts, " ")
}

// ParseOptions validates opts and compiles them into a Config.
//
// Unknown keys are reported before any value is inspected. Keys are checked
// in sorted order so the reported key is stable.
func ParseOptions(opts Options) (Config, error) {
	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if !slices.Contains(RecognizedOptions, k) {
			return Config{}, newUnknownOptionError(k)
		}
	}

	cfg := Config{
		Mode:      "r",
		Buffering: -1,
		CloseFD:   true,
	}

	if v, ok := opts[OptMode]; ok {
		s, ok := v.(string)
		if !ok {
			return Config{}, newValueError(OptMode, v, "must be a string")
		}
		cfg.Mode = s
	}
	flag, readable, writable, binary, err := parseMode(cfg.Mode)
	if err != nil {
		return Config{}, newValueError(OptMode, cfg.Mode, err.Error())
	}
	cfg.flag, cfg.readable, cfg.writable, cfg.binary = flag, readable, writable, binary

	if v, ok := opts[OptBuffering]; ok {
		n, ok := asInt(v)
		if !ok {
			return Config{}, newValueError(OptBuffering, v, "must be an integer")
		}
		if n < 0 {
			n = -1
		}
		if n == 0 && !binary {
			return Config{}, newValueError(OptBuffering, v, "can't have unbuffered text I/O")
		}
		if n == 1 && binary {
			n = -1
		}
		cfg.Buffering = n
	}

	if err := applyText(&cfg, opts); err != nil {
		return Config{}, err
	}

	if v, ok := opts[OptCloseFD]; ok {
		b, ok := v.(bool)
		if !ok {
			return Config{}, newValueError(OptCloseFD, v, "must be a boolean")
		}
		cfg.CloseFD = b
	}

	if v, ok := opts[OptOpener]; ok && v != nil {
		switch fn := v.(type) {
		case OpenerFunc:
			cfg.Opener = fn
		case func(string, int, os.FileMode) (*os.File, error):
			cfg.Opener = fn
		default:
			return Config{}, newValueError(OptOpener, v, "must be an OpenerFunc")
		}
		if cfg.Opener == nil {
			return Config{}, newValueError(OptOpener, v, "must not be a nil function")
		}
	}

	return cfg, nil
}

// applyText validates the text-only options.
func applyText(cfg *Config, opts Options) error {
	for _, k := range []string{OptEncoding, OptErrors, OptNewline} {
		if v, ok := opts[k]; ok && v != nil && cfg.binary {
			return newValueError(k, v, "binary mode doesn't take an "+k+" argument")
		}
	}
	if cfg.binary {
		return nil
	}

	cfg.Encoding = "utf-8"
	cfg.Errors = "strict"

	if v, ok := opts[OptEncoding]; ok && v != nil {
		label, ok := v.(string)
		if !ok {
			return newValueError(OptEncoding, v, "must be a string")
		}
		enc, err := htmlindex.Get(label)
		if err != nil {
			return newValueError(OptEncoding, v, "unknown encoding")
		}
		name, err := htmlindex.Name(enc)
		if err != nil {
			return newValueError(OptEncoding, v, "unknown encoding")
		}
		cfg.Encoding = name
		if name != "utf-8" {
			cfg.enc = enc
		}
	}

	if v, ok := opts[OptErrors]; ok && v != nil {
		s, ok := v.(string)
		if !ok || (s != "strict" && s != "replace") {
			return newValueError(OptErrors, v, `must be "strict" or "replace"`)
		}
		cfg.Errors = s
	}

	if v, ok := opts[OptNewline]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return newValueError(OptNewline, v, "must be a string")
		}
		switch s {
		case "", "\n", "\r", "\r\n":
		default:
			return newValueError(OptNewline, v, "illegal newline value")
		}
		cfg.Newline = s
		cfg.NewlineSet = true
	}

	return nil
}

// parseMode decodes an open() mode string into os flags.
func parseMode(mode string) (flag int, readable, writable, binary bool, err error) {
	seen := make(map[rune]bool, len(mode))
	for _, c := range mode {
		if !strings.ContainsRune("rwxabt+", c) || seen[c] {
			return 0, false, false, false, fmt.Errorf("invalid mode: %q", mode)
		}
		seen[c] = true
	}

	base := 0
	for _, c := range "rwxa" {
		if seen[c] {
			base++
		}
	}
	if base != 1 {
		return 0, false, false, false, errors.New("must have exactly one of create/read/write/append mode")
	}
	if seen['b'] && seen['t'] {
		return 0, false, false, false, errors.New("can't have text and binary mode at once")
	}

	switch {
	case seen['r']:
		flag, readable = os.O_RDONLY, true
	case seen['w']:
		flag, writable = os.O_WRONLY|os.O_CREATE|os.O_TRUNC, true
	case seen['x']:
		flag, writable = os.O_WRONLY|os.O_CREATE|os.O_EXCL, true
	case seen['a']:
		flag, writable = os.O_WRONLY|os.O_CREATE|os.O_APPEND, true
	}
	if seen['+'] {
		flag = flag&^(os.O_RDONLY|os.O_WRONLY) | os.O_RDWR
		readable, writable = true, true
	}

	return flag, readable, writable, seen['b'], nil
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	default:
		return 0, false
	}
}
