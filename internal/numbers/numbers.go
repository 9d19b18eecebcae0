package numbers

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"iter"
	"os"
	"strconv"

	"github.com/roach88/fnfn/internal/fileio"
	"github.com/roach88/fnfn/internal/signature"
	"github.com/roach88/fnfn/internal/wrap"
)

// Declared signatures.
var (
	SourceSig = signature.Of(signature.Positional("src"))
	CopySig   = signature.Of(signature.Positional("src"), signature.Positional("dst"))
	WriteSig  = signature.Of(signature.Positional("msg"), signature.Named("out"))
)

// scan yields the whitespace-separated integers in r.
func scan(r io.Reader) iter.Seq2[int, error] {
	return func(yield func(int, error) bool) {
		sc := bufio.NewScanner(r)
		sc.Split(bufio.ScanWords)
		for sc.Scan() {
			n, err := strconv.Atoi(sc.Text())
			if err != nil {
				yield(0, fmt.Errorf("parse integer %q: %w", sc.Text(), err))
				return
			}
			if !yield(n, nil) {
				return
			}
		}
		if err := sc.Err(); err != nil {
			yield(0, err)
		}
	}
}

// ReadAll returns every integer in "src" as []int.
func ReadAll(_ context.Context, args wrap.Args) (any, error) {
	r, err := wrap.Arg[io.Reader](args, "src")
	if err != nil {
		return nil, err
	}
	nums := []int{}
	for n, err := range scan(r) {
		if err != nil {
			return nil, err
		}
		nums = append(nums, n)
	}
	return nums, nil
}

// Sum returns the sum of the integers in "src".
func Sum(_ context.Context, args wrap.Args) (any, error) {
	r, err := wrap.Arg[io.Reader](args, "src")
	if err != nil {
		return nil, err
	}
	total := 0
	for n, err := range scan(r) {
		if err != nil {
			return nil, err
		}
		total += n
	}
	return total, nil
}

// Read yields the integers in "src" one at a time.
func Read(_ context.Context, args wrap.Args) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		r, err := wrap.Arg[io.Reader](args, "src")
		if err != nil {
			yield(nil, err)
			return
		}
		for n, err := range scan(r) {
			if !yield(n, err) || err != nil {
				return
			}
		}
	}
}

// Copy writes each integer in "src" to "dst", one per line, and returns
// the count.
func Copy(_ context.Context, args wrap.Args) (any, error) {
	r, err := wrap.Arg[io.Reader](args, "src")
	if err != nil {
		return nil, err
	}
	w, err := wrap.Arg[io.Writer](args, "dst")
	if err != nil {
		return nil, err
	}
	count := 0
	for n, err := range scan(r) {
		if err != nil {
			return count, err
		}
		if _, err := fmt.Fprintln(w, n); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// Printer writes messages to "out", or to Default when "out" is not
// supplied.
type Printer struct {
	Default io.Writer
}

// WriteLine writes "msg" and a newline. Returns the bytes written.
func (p *Printer) WriteLine(_ context.Context, args wrap.Args) (any, error) {
	msg, err := wrap.Arg[string](args, "msg")
	if err != nil {
		return nil, err
	}
	out := p.Default
	if _, ok := args.Get("out"); ok {
		if out, err = wrap.Arg[io.Writer](args, "out"); err != nil {
			return nil, err
		}
	}
	if out == nil {
		out = os.Stdout
	}
	return fmt.Fprintln(out, msg)
}

// Collection holds integers loaded from a source.
type Collection struct {
	Data []int
}

// Populate replaces c.Data with the integers in "src".
func (c *Collection) Populate(ctx context.Context, args wrap.Args) (any, error) {
	v, err := ReadAll(ctx, args)
	if err != nil {
		return nil, err
	}
	c.Data = v.([]int)
	return len(c.Data), nil
}

// All iterates over the collected integers.
func (c *Collection) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		for _, n := range c.Data {
			if !yield(n) {
				return
			}
		}
	}
}

// NewSum wraps Sum. opts are applied after the defaults.
func NewSum(opts ...wrap.Option) (*wrap.Wrapper, error) {
	return wrap.Wrap(Sum, SourceSig, withDefaults(opts, wrap.WithName("sum"))...)
}

// NewReadAll wraps ReadAll.
func NewReadAll(opts ...wrap.Option) (*wrap.Wrapper, error) {
	return wrap.Wrap(ReadAll, SourceSig, withDefaults(opts, wrap.WithName("read_all"))...)
}

// NewRead wraps the lazy Read.
func NewRead(opts ...wrap.Option) (*wrap.Wrapper, error) {
	return wrap.Wrap(Read, SourceSig, withDefaults(opts, wrap.WithName("read"))...)
}

// NewCopy stacks two wrappers around Copy: the inner one opens "dst" for
// writing, the outer one opens "src" for reading. opts are applied to both
// layers and must not select a parameter.
func NewCopy(opts ...wrap.Option) (*wrap.Wrapper, error) {
	inner, err := wrap.Wrap(Copy, CopySig, withDefaults(opts,
		wrap.WithName("copy"),
		wrap.WithParam("dst"),
		wrap.WithOpenOptions(fileio.Options{"mode": "w"}),
	)...)
	if err != nil {
		return nil, err
	}
	return wrap.Wrap(inner.Callable(), CopySig, withDefaults(opts,
		wrap.WithName("copy"),
		wrap.WithParam("src"),
	)...)
}

// NewWriteLine wraps p.WriteLine with "out" opened for writing.
func NewWriteLine(p *Printer, opts ...wrap.Option) (*wrap.Wrapper, error) {
	return wrap.Wrap(wrap.Method(p, (*Printer).WriteLine), WriteSig, withDefaults(opts,
		wrap.WithName("write"),
		wrap.WithParam("out"),
		wrap.WithOpenOptions(fileio.Options{"mode": "w"}),
	)...)
}

// NewPopulate wraps c.Populate.
func NewPopulate(c *Collection, opts ...wrap.Option) (*wrap.Wrapper, error) {
	return wrap.Wrap(wrap.Method(c, (*Collection).Populate), SourceSig, withDefaults(opts,
		wrap.WithName("populate"),
		wrap.WithParam("src"),
	)...)
}

func withDefaults(opts []wrap.Option, defaults ...wrap.Option) []wrap.Option {
	return append(defaults, opts...)
}
