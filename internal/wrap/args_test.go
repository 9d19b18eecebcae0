package wrap

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fnfn/internal/fileio"
	"github.com/roach88/fnfn/internal/signature"
	"github.com/roach88/fnfn/internal/testutil"
)

func descriptor(t *testing.T, params ...signature.Param) *signature.Descriptor {
	t.Helper()
	d, err := signature.NewDescriptor(signature.Of(params...), false)
	require.NoError(t, err)
	return d
}

func TestBind_PositionalOnly(t *testing.T) {
	d := descriptor(t, signature.Positional("a"), signature.Positional("b"))

	got, err := Bind(d, Pos(1, 2))
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2}, got.Positional)
	assert.Empty(t, got.Named)
}

func TestBind_NamedMovesIntoPositional(t *testing.T) {
	d := descriptor(t, signature.Positional("a"), signature.Positional("b"), signature.Positional("c"))

	got, err := Bind(d, Pos(1).With("c", 3).With("b", 2))
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2, 3}, got.Positional)
	assert.Empty(t, got.Named)
}

func TestBind_GapKeepsLaterNamed(t *testing.T) {
	d := descriptor(t, signature.Positional("a"), signature.Positional("b"), signature.Positional("c"))

	got, err := Bind(d, Args{}.With("c", 3))
	require.NoError(t, err)
	assert.Empty(t, got.Positional)
	assert.Equal(t, map[string]any{"c": 3}, got.Named)

	v, ok := got.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestBind_NamedOnlyStaysNamed(t *testing.T) {
	d := descriptor(t, signature.Positional("a"), signature.Named("mode"))

	got, err := Bind(d, Pos(1).With("mode", "w"))
	require.NoError(t, err)
	assert.Equal(t, []any{1}, got.Positional)
	assert.Equal(t, map[string]any{"mode": "w"}, got.Named)
}

func TestBind_NormalizesNames(t *testing.T) {
	d := descriptor(t, signature.Positional("ﬁle"))

	got, err := Bind(d, Args{}.With("ﬁle", "x"))
	require.NoError(t, err)
	assert.Equal(t, []any{"x"}, got.Positional)

	v, ok := got.Get("file")
	assert.True(t, ok)
	assert.Equal(t, "x", v)
}

func TestBind_Errors(t *testing.T) {
	d := descriptor(t, signature.Positional("a"), signature.Named("k"))

	tests := []struct {
		name string
		args Args
		msg  string
	}{
		{"too many positional", Pos(1, 2), "takes 1 positional arguments but 2 were given"},
		{"unknown named", Args{}.With("z", 1), `unexpected named argument "z"`},
		{"duplicate", Pos(1).With("a", 2), `multiple values for argument "a"`},
		{"duplicate after normalization", Args{Named: map[string]any{"k": 1, "ｋ": 2}}, `multiple values for argument "k"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Bind(d, tt.args)
			require.Error(t, err)
			assert.True(t, IsArgumentBinding(err))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestBind_DoesNotAlias(t *testing.T) {
	d := descriptor(t, signature.Positional("a"), signature.Positional("b"))
	in := Pos(1).With("b", 2)

	got, err := Bind(d, in)
	require.NoError(t, err)
	got.Positional[0] = 99

	assert.Equal(t, 1, in.Positional[0])
	assert.Equal(t, 2, in.Named["b"])
}

func TestArg(t *testing.T) {
	d := descriptor(t, signature.Positional("n"), signature.Positional("s"))
	a, err := Bind(d, Pos(4, "four"))
	require.NoError(t, err)

	n, err := Arg[int](a, "n")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = Arg[string](a, "n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `argument "n" is int, want string`)

	_, err = Arg[error](a, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing required argument "missing"`)
}

func TestArg_InterfaceTypeInMessage(t *testing.T) {
	a := Pos().With("r", 1)

	_, err := Arg[error](a, "r")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want error")
}

func TestClassify(t *testing.T) {
	o := testutil.NewRecordingOpener(nil)
	h, err := o.Open(context.Background(), "x", fileio.DefaultConfig())
	require.NoError(t, err)

	tests := []struct {
		name string
		v    any
		kind ArgKind
		res  string
	}{
		{"string", "data.txt", KindName, "data.txt"},
		{"bytes", []byte("data.txt"), KindName, "data.txt"},
		{"path like", fileio.Path("data.txt"), KindName, "data.txt"},
		{"handle", h, KindAlreadyOpen, ""},
		{"os file", os.Stdin, KindAlreadyOpen, ""},
		{"int", 42, KindInvalid, ""},
		{"nil", nil, KindInvalid, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.v, fileio.IsOpenHandle, fileio.NameOf)
			assert.Equal(t, tt.kind, c.Kind)
			assert.Equal(t, tt.res, c.Name)
			assert.Equal(t, tt.v, c.Value)
		})
	}
}

func TestClassify_HandleWinsOverName(t *testing.T) {
	both := func(any) bool { return true }
	name := func(any) (string, bool) { return "x", true }

	c := Classify("x", both, name)
	assert.Equal(t, KindAlreadyOpen, c.Kind)
}

func TestCall_CustomPredicates(t *testing.T) {
	type ticket struct{ path string }
	o := testutil.NewRecordingOpener(map[string]string{"t.txt": "8"})

	w, err := Wrap(sumInts, srcSig,
		WithOpener(o.Open),
		WithNameFunc(func(v any) (string, bool) {
			tk, ok := v.(ticket)
			return tk.path, ok
		}),
	)
	require.NoError(t, err)

	got, err := w.Call(context.Background(), Pos(ticket{path: "t.txt"}))
	require.NoError(t, err)
	assert.Equal(t, 8, got)

	_, err = w.Call(context.Background(), Pos("t.txt"))
	assert.True(t, IsUnsupportedArgumentType(err), "plain strings are no longer names")
}

func TestArgKind_String(t *testing.T) {
	assert.Equal(t, "Invalid", KindInvalid.String())
	assert.Equal(t, "AlreadyOpen", KindAlreadyOpen.String())
	assert.Equal(t, "Name", KindName.String())
}

func TestCodeOf(t *testing.T) {
	_, sigErr := signature.Resolve([]string{"a"}, nil, 4)
	_, optErr := fileio.ParseOptions(fileio.Options{"colour": 1})

	assert.Equal(t, "INDEX_OUT_OF_RANGE", CodeOf(sigErr))
	assert.Equal(t, "INVALID_OPTION", CodeOf(optErr))
	assert.Equal(t, "ARGUMENT_BINDING", CodeOf(bindingError("x")))
	assert.Equal(t, "", CodeOf(errors.New("plain")))
	assert.Equal(t, "", CodeOf(nil))
}

func TestError_Message(t *testing.T) {
	err := &Error{Code: ErrCodeUnsupportedArgumentType, Message: "int", Function: "sum", Param: "src"}
	assert.Equal(t, "UNSUPPORTED_ARGUMENT_TYPE: int (function=sum, param=src)", err.Error())

	bare := &Error{Code: ErrCodeNotCallable, Message: "nil"}
	assert.Equal(t, "NOT_CALLABLE: nil", bare.Error())
}

func TestLease_StateTransitions(t *testing.T) {
	o := testutil.NewRecordingOpener(nil)
	w, err := Wrap(sumInts, srcSig, WithOpener(o.Open), WithLogger(quietLogger()))
	require.NoError(t, err)

	l, err := w.acquire(context.Background(), "x", false)
	require.NoError(t, err)
	assert.Equal(t, StateOpen, l.State())

	require.NoError(t, l.release())
	require.NoError(t, l.release())
	assert.Equal(t, StateClosed, l.State())

	h, err := o.Handle("x")
	require.NoError(t, err)
	assert.Equal(t, 1, h.Closes())

	assert.Equal(t, StateUnopened, (&lease{}).State())
}

func TestLease_NilHandleIsAnOpenError(t *testing.T) {
	w, err := Wrap(sumInts, srcSig,
		WithOpener(func(context.Context, string, fileio.Config) (io.Closer, error) { return nil, nil }),
		WithLogger(quietLogger()),
	)
	require.NoError(t, err)

	_, err = w.Call(context.Background(), Pos("x"))
	var pe *os.PathError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "x", pe.Path)
}
