package wrap

import (
	"context"
	"io"
	"log/slog"

	"github.com/roach88/fnfn/internal/fileio"
)

// OpenFunc is the open primitive: it turns a resource name into a handle
// under the wrapper's validated options.
type OpenFunc func(ctx context.Context, name string, cfg fileio.Config) (io.Closer, error)

// OpenFile is the default OpenFunc, backed by fileio.Open.
func OpenFile(ctx context.Context, name string, cfg fileio.Config) (io.Closer, error) {
	f, err := fileio.Open(ctx, name, cfg)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Option configures a Wrapper at construction.
type Option func(*settings)

type settings struct {
	param    any
	open     fileio.Options
	opener   OpenFunc
	isHandle func(any) bool
	nameOf   func(any) (string, bool)
	logger   *slog.Logger
	observer Observer
	ids      IDGenerator
	name     string
}

func defaultSettings() settings {
	return settings{
		param:    0,
		opener:   OpenFile,
		isHandle: fileio.IsOpenHandle,
		nameOf:   fileio.NameOf,
		ids:      UUIDv7Generator{},
	}
}

// WithParam selects the handle parameter: an integer index (negative counts
// from the end of the positional parameters) or a parameter name.
//
// Default: 0
func WithParam(spec any) Option {
	return func(s *settings) {
		s.param = spec
	}
}

// WithOpenOptions sets the options used whenever the wrapper opens a
// resource. Keys are validated at wrap time against fileio.RecognizedOptions.
func WithOpenOptions(opts fileio.Options) Option {
	return func(s *settings) {
		s.open = opts
	}
}

// WithOpener replaces the open primitive.
func WithOpener(open OpenFunc) Option {
	return func(s *settings) {
		if open != nil {
			s.opener = open
		}
	}
}

// WithHandlePredicate replaces the "already an open handle" check.
func WithHandlePredicate(isHandle func(any) bool) Option {
	return func(s *settings) {
		if isHandle != nil {
			s.isHandle = isHandle
		}
	}
}

// WithNameFunc replaces the resource-name extraction.
func WithNameFunc(nameOf func(any) (string, bool)) Option {
	return func(s *settings) {
		if nameOf != nil {
			s.nameOf = nameOf
		}
	}
}

// WithLogger sets the logger for lifecycle records.
//
// Default: slog.Default() at wrap time
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithObserver receives every handle transition.
func WithObserver(o Observer) Option {
	return func(s *settings) {
		s.observer = o
	}
}

// WithIDGenerator sets the call ID source.
//
// Default: UUIDv7Generator
func WithIDGenerator(g IDGenerator) Option {
	return func(s *settings) {
		if g != nil {
			s.ids = g
		}
	}
}

// WithName names the wrapped function in errors, logs and events.
func WithName(name string) Option {
	return func(s *settings) {
		s.name = name
	}
}
