package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/fnfn/internal/numbers"
	"github.com/roach88/fnfn/internal/wrap"
)

// resource turns a path argument into a wrapper argument: "-" is the
// command's stdin, passed as an already-open handle the wrapper must not
// close; anything else is a name the wrapper opens.
func resource(cmd *cobra.Command, path string) any {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin())
	}
	return path
}

type sumResult struct {
	Sum int `json:"sum"`
}

func (r sumResult) WriteText(w io.Writer) error {
	_, err := fmt.Fprintln(w, r.Sum)
	return err
}

// NewSumCommand creates the sum command.
func NewSumCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sum <path|->",
		Short: "Sum the integers in a file",
		Long: `Sum the whitespace-separated integers in a file.

Examples:
  fnfn sum numbers.txt
  cat numbers.txt | fnfn sum -
  fnfn sum --config fnfn.yaml --ledger fnfn.db numbers.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSum(rootOpts, cmd, args[0])
		},
	}
}

func runSum(opts *RootOptions, cmd *cobra.Command, path string) error {
	s, err := newSession(opts, cmd)
	if err != nil {
		return err
	}
	return s.finish(s.sum(cmd, path))
}

func (s *session) sum(cmd *cobra.Command, path string) error {
	w, err := numbers.NewSum(s.options("sum")...)
	if err != nil {
		return s.fail(ExitCommandError, "invalid sum configuration", err)
	}

	res, err := w.Call(s.ctx, wrap.Pos(resource(cmd, path)))
	if err != nil {
		return s.fail(ExitFailure, "sum failed", err)
	}
	return s.out.Success(sumResult{Sum: res.(int)})
}

// CatOptions holds flags for the cat command.
type CatOptions struct {
	*RootOptions
	Head int
}

type catResult struct {
	Values []int `json:"values"`
}

func (r catResult) WriteText(w io.Writer) error {
	for _, v := range r.Values {
		if _, err := fmt.Fprintln(w, v); err != nil {
			return err
		}
	}
	return nil
}

// NewCatCommand creates the cat command.
func NewCatCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "cat <path|->",
		Short: "Stream the integers in a file",
		Long: `Stream the integers in a file one at a time.

The file stays open while values are being read and is closed as soon as
the stream ends. With --head the stream is abandoned early, which also
closes the file.

Examples:
  fnfn cat numbers.txt
  fnfn cat --head 2 numbers.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCat(opts, cmd, args[0])
		},
	}

	cmd.Flags().IntVar(&opts.Head, "head", 0, "stop after this many values (0 reads everything)")

	return cmd
}

func runCat(opts *CatOptions, cmd *cobra.Command, path string) error {
	if opts.Head < 0 {
		return NewExitError(ExitCommandError, "--head must not be negative")
	}
	s, err := newSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	return s.finish(s.cat(cmd, path, opts.Head))
}

func (s *session) cat(cmd *cobra.Command, path string, head int) error {
	w, err := numbers.NewRead(s.options("cat")...)
	if err != nil {
		return s.fail(ExitCommandError, "invalid cat configuration", err)
	}

	stream, err := w.Stream(s.ctx, wrap.Pos(resource(cmd, path)))
	if err != nil {
		return s.fail(ExitFailure, "cat failed", err)
	}
	defer stream.Close()

	res := catResult{Values: []int{}}
	for stream.Next() {
		res.Values = append(res.Values, stream.Value().(int))
		if head > 0 && len(res.Values) == head {
			s.out.VerboseLog("stopping after %d values", head)
			break
		}
	}
	if err := stream.Err(); err != nil {
		return s.fail(ExitFailure, "cat failed", err)
	}
	if err := stream.Close(); err != nil {
		return s.fail(ExitFailure, "cat failed", err)
	}

	return s.out.Success(res)
}

type copyResult struct {
	Copied int `json:"copied"`
}

func (r copyResult) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "copied %d integers\n", r.Copied)
	return err
}

// NewCopyCommand creates the copy command.
func NewCopyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "copy <src|-> <dst>",
		Short: "Copy integers from one file to another, one per line",
		Long: `Copy integers from one file to another, one per line.

Two wrappers are stacked: the outer one opens src for reading and the
inner one opens dst for writing. Both files are closed when the copy
finishes or fails.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			return s.finish(s.copy(cmd, args[0], args[1]))
		},
	}
}

func (s *session) copy(cmd *cobra.Command, src, dst string) error {
	w, err := numbers.NewCopy(s.baseOptions()...)
	if err != nil {
		return s.fail(ExitCommandError, "invalid copy configuration", err)
	}

	res, err := w.Call(s.ctx, wrap.Pos(resource(cmd, src), dst))
	if err != nil {
		return s.fail(ExitFailure, "copy failed", err)
	}
	return s.out.Success(copyResult{Copied: res.(int)})
}

// WriteOptions holds flags for the write command.
type WriteOptions struct {
	*RootOptions
	Out string
}

type writeResult struct {
	Bytes int    `json:"bytes"`
	Out   string `json:"out,omitempty"`
}

func (r writeResult) WriteText(w io.Writer) error {
	if r.Out == "" {
		return nil
	}
	_, err := fmt.Fprintf(w, "wrote %d bytes to %s\n", r.Bytes, r.Out)
	return err
}

// NewWriteCommand creates the write command.
func NewWriteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WriteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "write <message>",
		Short: "Write a line to a file (default stdout)",
		Long: `Write a message and a newline.

Without --out the message goes to stdout, which the wrapper passes
through untouched. With --out the file is created or truncated, written
and closed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(opts.RootOptions, cmd)
			if err != nil {
				return err
			}
			return s.finish(s.write(cmd, args[0], opts.Out))
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output file")

	return cmd
}

func (s *session) write(cmd *cobra.Command, msg, out string) error {
	p := &numbers.Printer{Default: cmd.OutOrStdout()}
	if s.opts.Format == "json" {
		// keep stdout a single JSON document
		p.Default = cmd.ErrOrStderr()
	}

	w, err := numbers.NewWriteLine(p, s.options("write")...)
	if err != nil {
		return s.fail(ExitCommandError, "invalid write configuration", err)
	}

	args := wrap.Pos(msg)
	if out != "" {
		args = args.With("out", out)
	}
	res, err := w.Call(s.ctx, args)
	if err != nil {
		return s.fail(ExitFailure, "write failed", err)
	}
	return s.out.Success(writeResult{Bytes: res.(int), Out: out})
}
