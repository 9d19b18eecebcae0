package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/fnfn/internal/config"
	"github.com/roach88/fnfn/internal/ledger"
	"github.com/roach88/fnfn/internal/wrap"
)

// idGenerator overrides call ID generation; nil uses wrap's UUIDv7 default.
// Tests set it for stable ledger contents.
var idGenerator wrap.IDGenerator

// session is the per-invocation state shared by the wrapper commands:
// logger, optional config and optional ledger.
type session struct {
	ctx      context.Context
	opts     *RootOptions
	out      *OutputFormatter
	logger   *slog.Logger
	cfg      *config.Config
	ledger   *ledger.Ledger
	recorder *ledger.Recorder
	ids      wrap.IDGenerator
}

func newSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s := &session{
		ctx:  ctx,
		opts: opts,
		out: &OutputFormatter{
			Format:    opts.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(),
			Verbose:   opts.Verbose,
		},
		logger: newLogger(cmd.ErrOrStderr(), opts.Verbose),
		ids:    idGenerator,
	}

	if opts.Config != "" {
		cfg, err := config.Load(opts.Config)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load config", err)
		}
		s.cfg = cfg
		s.out.VerboseLog("loaded config %s (%d commands)", opts.Config, len(cfg.Commands))
	}

	if opts.Ledger != "" {
		l, err := ledger.Open(opts.Ledger)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open ledger", err)
		}
		s.ledger = l
		s.recorder = l.Observer(ctx, s.logger)
	}

	return s, nil
}

// newLogger writes text records to w: debug lifecycle records when
// verbose, warnings and errors otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// baseOptions are the ambient wrapper options: logging, recording, IDs.
func (s *session) baseOptions() []wrap.Option {
	opts := []wrap.Option{wrap.WithLogger(s.logger)}
	if s.recorder != nil {
		opts = append(opts, wrap.WithObserver(s.recorder))
	}
	if s.ids != nil {
		opts = append(opts, wrap.WithIDGenerator(s.ids))
	}
	return opts
}

// options returns baseOptions followed by the config entry for command,
// so config overrides the command's defaults.
func (s *session) options(command string) []wrap.Option {
	return append(s.baseOptions(), s.cfg.Command(command).Options()...)
}

// fail reports err in JSON mode and wraps it with an exit code.
func (s *session) fail(code int, message string, err error) error {
	if s.opts.Format == "json" {
		if werr := s.out.Failure(err); werr != nil {
			s.logger.Error("failed to write error response", "error", werr)
		}
	}
	return WrapExitError(code, message, err)
}

// finish closes the ledger and surfaces recording failures.
func (s *session) finish(err error) error {
	if s.ledger == nil {
		return err
	}
	if rerr := s.recorder.Err(); rerr != nil && err == nil {
		err = WrapExitError(ExitFailure, "failed to record lifecycle events", rerr)
	}
	if cerr := s.ledger.Close(); cerr != nil && err == nil {
		err = WrapExitError(ExitFailure, "failed to close ledger", cerr)
	}
	if err == nil {
		s.out.VerboseLog("recorded %d lifecycle events in %s", s.recorder.Recorded(), s.opts.Ledger)
	}
	return err
}
