package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/fnfn/internal/numbers"
	"github.com/roach88/fnfn/internal/wrap"
)

// commandInfo describes the wrapper behind one command.
type commandInfo struct {
	Command   string   `json:"command"`
	Function  string   `json:"function"`
	Params    []string `json:"params"`
	NamedOnly []string `json:"named_only,omitempty"`
	Lazy      bool     `json:"lazy"`
	Handle    string   `json:"handle"`
	Open      string   `json:"open"`
}

func describeWrapper(command string, w *wrap.Wrapper) commandInfo {
	d := w.Descriptor()
	return commandInfo{
		Command:   command,
		Function:  w.Name(),
		Params:    d.ParameterNames(),
		NamedOnly: d.KeywordOnlyNames(),
		Lazy:      d.IsLazyProducer(),
		Handle:    w.Spec().String(),
		Open:      w.OpenConfig().String(),
	}
}

// signature renders the declared parameters, named-only ones after "*".
func (c commandInfo) signature() string {
	parts := append([]string{}, c.Params...)
	if len(c.NamedOnly) > 0 {
		parts = append(parts, "*")
		parts = append(parts, c.NamedOnly...)
	}
	return fmt.Sprintf("%s(%s)", c.Function, strings.Join(parts, ", "))
}

type describeResult struct {
	Commands []commandInfo `json:"commands"`
}

func (r describeResult) WriteText(w io.Writer) error {
	for i, c := range r.Commands {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s: %s\n", c.Command, c.signature())
		fmt.Fprintf(w, "  handle: %s\n", c.Handle)
		fmt.Fprintf(w, "  lazy:   %t\n", c.Lazy)
		if _, err := fmt.Fprintf(w, "  open:   %s\n", c.Open); err != nil {
			return err
		}
	}
	return nil
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "Show each command's wrapped function and handle parameter",
		Long: `Show each command's wrapped function, its declared parameters, the
resolved handle parameter and the options used to open it.

With --config the overrides are applied first, so describe doubles as a
config check: an unknown parameter or open option fails here.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			return s.finish(s.describe())
		},
	}
}

func (s *session) describe() error {
	builders := []struct {
		command string
		build   func() (*wrap.Wrapper, error)
	}{
		{"sum", func() (*wrap.Wrapper, error) { return numbers.NewSum(s.options("sum")...) }},
		{"cat", func() (*wrap.Wrapper, error) { return numbers.NewRead(s.options("cat")...) }},
		{"copy", func() (*wrap.Wrapper, error) { return numbers.NewCopy(s.baseOptions()...) }},
		{"write", func() (*wrap.Wrapper, error) {
			return numbers.NewWriteLine(&numbers.Printer{}, s.options("write")...)
		}},
	}

	res := describeResult{}
	for _, b := range builders {
		w, err := b.build()
		if err != nil {
			return s.fail(ExitCommandError, "invalid "+b.command+" configuration", err)
		}
		res.Commands = append(res.Commands, describeWrapper(b.command, w))
	}
	return s.out.Success(res)
}
