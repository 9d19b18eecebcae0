package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Ledger  string // SQLite ledger path; empty disables recording
	Config  string // YAML or CUE config path
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the fnfn CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "fnfn",
		Short: "fnfn - call file functions with file names",
		Long: `Run integer-file functions on paths or already-open streams.

Each command wraps a function written against an open handle. Give it a
path and the wrapper opens the file, hands the handle over and closes it
exactly once when the function (or lazy stream) is done.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (debug lifecycle logs on stderr)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Ledger, "ledger", "", "record handle lifecycle events in this SQLite database")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "per-command wrapper settings (.yaml, .yml or .cue)")

	cmd.AddCommand(NewSumCommand(opts))
	cmd.AddCommand(NewCatCommand(opts))
	cmd.AddCommand(NewCopyCommand(opts))
	cmd.AddCommand(NewWriteCommand(opts))
	cmd.AddCommand(NewDescribeCommand(opts))
	cmd.AddCommand(NewLedgerCommand(opts))

	return cmd
}
