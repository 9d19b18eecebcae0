package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/fnfn/internal/ledger"
)

// LedgerOptions holds flags for the ledger command.
type LedgerOptions struct {
	*RootOptions
	CallID string
	Calls  bool
	Leaks  bool
}

type eventsResult struct {
	Events []ledger.Entry `json:"events"`
}

func (r eventsResult) WriteText(w io.Writer) error {
	if len(r.Events) == 0 {
		_, err := fmt.Fprintln(w, "No events recorded")
		return err
	}
	for _, e := range r.Events {
		line := fmt.Sprintf("%d %s %s %s %s=%s", e.Seq, e.CallID, e.State, e.Function, e.Param, e.Resource)
		if e.Lazy {
			line += " lazy"
		}
		if e.Error != "" {
			line += fmt.Sprintf(" error=%q", e.Error)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

type callsResult struct {
	Calls []ledger.Call `json:"calls"`
}

func (r callsResult) WriteText(w io.Writer) error {
	if len(r.Calls) == 0 {
		_, err := fmt.Fprintln(w, "No calls recorded")
		return err
	}
	for _, c := range r.Calls {
		status := fmt.Sprintf("closed@%d", c.CloseSeq)
		if c.Leaked() {
			status = "OPEN"
		}
		if _, err := fmt.Fprintf(w, "%s %s %s=%s opened@%d %s\n",
			c.CallID, c.Function, c.Param, c.Resource, c.OpenSeq, status); err != nil {
			return err
		}
	}
	return nil
}

// NewLedgerCommand creates the ledger command.
func NewLedgerCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LedgerOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ledger <db>",
		Short: "Show recorded handle lifecycle events",
		Long: `Show the handle lifecycle events recorded with --ledger.

By default every transition is listed in seq order. --calls summarizes one
line per call; --leaks lists only calls whose handle was never closed and
exits with status 1 when there are any.

Examples:
  fnfn ledger fnfn.db
  fnfn ledger fnfn.db --call 0192f3c8-...
  fnfn ledger fnfn.db --leaks --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLedger(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.CallID, "call", "", "only show events for this call ID")
	cmd.Flags().BoolVar(&opts.Calls, "calls", false, "summarize per call")
	cmd.Flags().BoolVar(&opts.Leaks, "leaks", false, "only show calls that were never closed")
	cmd.MarkFlagsMutuallyExclusive("call", "calls", "leaks")

	return cmd
}

func runLedger(opts *LedgerOptions, cmd *cobra.Command, path string) error {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	ctx := cmd.Context()

	if _, err := os.Stat(path); err != nil {
		return WrapExitError(ExitCommandError, "ledger not found", err)
	}

	l, err := ledger.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open ledger", err)
	}
	defer l.Close()

	switch {
	case opts.Calls:
		calls, err := l.Calls(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read calls", err)
		}
		return out.Success(callsResult{Calls: calls})

	case opts.Leaks:
		leaks, err := l.Leaks(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read calls", err)
		}
		if err := out.Success(callsResult{Calls: leaks}); err != nil {
			return err
		}
		if len(leaks) > 0 {
			return NewExitError(ExitFailure, fmt.Sprintf("%d handles never closed", len(leaks)))
		}
		return nil

	default:
		events, err := l.Events(ctx, opts.CallID)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read events", err)
		}
		out.VerboseLog("%d events in %s", len(events), path)
		return out.Success(eventsResult{Events: events})
	}
}
