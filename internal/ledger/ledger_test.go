package ledger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fnfn/internal/signature"
	"github.com/roach88/fnfn/internal/testutil"
	"github.com/roach88/fnfn/internal/wrap"
)

// createTestLedger opens a fresh ledger with a deterministic clock.
func createTestLedger(t *testing.T) *Ledger {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.db")
	l, err := Open(path, WithClock(testutil.NewSeqClock()))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func event(callID string, state wrap.HandleState) wrap.Event {
	return wrap.Event{CallID: callID, Function: "sum", Param: "src", Resource: "n.txt", State: state}
}

func TestOpen_CreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	l, err := Open(path)
	require.NoError(t, err)
	defer l.Close()

	_, err = os.Stat(path)
	require.NoError(t, err)
	require.NoError(t, l.Ping(context.Background()))
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	for range 3 {
		l, err := Open(path)
		require.NoError(t, err)
		require.NoError(t, l.Close())
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/ledger.db")
	assert.Error(t, err)
}

func TestOpen_RefusesNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	l, err := Open(path)
	require.NoError(t, err)
	_, err = l.db.Exec("PRAGMA user_version = 99")
	require.NoError(t, err)
	require.NoError(t, l.Close())

	_, err = Open(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newer than supported")
}

func TestOpen_Pragmas(t *testing.T) {
	l := createTestLedger(t)

	assert.NoError(t, l.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, l.verifyPragma("synchronous", "1"))
	assert.NoError(t, l.verifyPragma("busy_timeout", "5000"))
	assert.NoError(t, l.verifyPragma("user_version", "1"))
}

func TestClose_NilDB(t *testing.T) {
	l := &Ledger{}
	assert.NoError(t, l.Close())
}

func TestRecord_OpenThenClose(t *testing.T) {
	l := createTestLedger(t)
	ctx := context.Background()

	require.NoError(t, l.Record(ctx, event("c1", wrap.StateOpen)))
	closed := event("c1", wrap.StateClosed)
	closed.Err = errors.New("flush failed")
	require.NoError(t, l.Record(ctx, closed))

	entries, err := l.Events(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, Entry{Seq: 1, CallID: "c1", Function: "sum", Param: "src", Resource: "n.txt", State: wrap.StateOpen}, entries[0])
	assert.Equal(t, int64(2), entries[1].Seq)
	assert.Equal(t, wrap.StateClosed, entries[1].State)
	assert.Equal(t, "flush failed", entries[1].Error)
}

func TestRecord_SecondCloseRejected(t *testing.T) {
	l := createTestLedger(t)
	ctx := context.Background()

	require.NoError(t, l.Record(ctx, event("c1", wrap.StateOpen)))
	require.NoError(t, l.Record(ctx, event("c1", wrap.StateClosed)))

	err := l.Record(ctx, event("c1", wrap.StateClosed))
	require.Error(t, err)
	assert.True(t, IsDuplicateTransition(err))
	assert.Equal(t, "DUPLICATE_TRANSITION", err.(*Error).ErrorCode())

	entries, err := l.Events(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRecord_SecondOpenRejected(t *testing.T) {
	l := createTestLedger(t)
	ctx := context.Background()

	require.NoError(t, l.Record(ctx, event("c1", wrap.StateOpen)))
	assert.True(t, IsDuplicateTransition(l.Record(ctx, event("c1", wrap.StateOpen))))
}

func TestRecord_OrphanClose(t *testing.T) {
	l := createTestLedger(t)

	err := l.Record(context.Background(), event("ghost", wrap.StateClosed))
	assert.True(t, IsOrphanClose(err))
	assert.Contains(t, err.Error(), "ORPHAN_CLOSE: call ghost state closed")
}

func TestRecord_UnopenedStateRejected(t *testing.T) {
	l := createTestLedger(t)

	err := l.Record(context.Background(), event("c1", wrap.StateUnopened))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNRECORDED_STATE")
}

func TestEvents_AllWhenCallIDEmpty(t *testing.T) {
	l := createTestLedger(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		require.NoError(t, l.Record(ctx, event(id, wrap.StateOpen)))
	}

	all, err := l.Events(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].CallID)
	assert.Equal(t, "b", all[1].CallID)

	none, err := l.Events(ctx, "zzz")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestCallsAndLeaks(t *testing.T) {
	l := createTestLedger(t)
	ctx := context.Background()

	require.NoError(t, l.Record(ctx, event("a", wrap.StateOpen)))
	require.NoError(t, l.Record(ctx, event("b", wrap.StateOpen)))
	require.NoError(t, l.Record(ctx, event("a", wrap.StateClosed)))

	calls, err := l.Calls(ctx)
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, Call{CallID: "a", Function: "sum", Param: "src", Resource: "n.txt", OpenSeq: 1, CloseSeq: 3}, calls[0])
	assert.True(t, calls[1].Leaked())

	leaks, err := l.Leaks(ctx)
	require.NoError(t, err)
	require.Len(t, leaks, 1)
	assert.Equal(t, "b", leaks[0].CallID)
}

func TestOpen_ClockResumesAfterStoredSeq(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	ctx := context.Background()

	l, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l.Record(ctx, event("a", wrap.StateOpen)))
	require.NoError(t, l.Record(ctx, event("a", wrap.StateClosed)))
	require.NoError(t, l.Close())

	l, err = Open(path)
	require.NoError(t, err)
	defer l.Close()
	require.NoError(t, l.Record(ctx, event("b", wrap.StateOpen)))

	entries, err := l.Events(ctx, "b")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(3), entries[0].Seq)
}

func TestRecorder_WithWrapper(t *testing.T) {
	l := createTestLedger(t)
	ctx := context.Background()
	rec := l.Observer(ctx, slog.New(slog.NewTextHandler(io.Discard, nil)))

	opener := testutil.NewRecordingOpener(map[string]string{"n.txt": "1 2"})
	w, err := wrap.Wrap(func(context.Context, wrap.Args) (any, error) { return nil, nil },
		signature.Of(signature.Positional("src")),
		wrap.WithName("noop"),
		wrap.WithOpener(opener.Open),
		wrap.WithObserver(rec),
		wrap.WithIDGenerator(wrap.NewFixedGenerator("call-1", "call-2")),
	)
	require.NoError(t, err)

	for range 2 {
		_, err := w.Call(ctx, wrap.Pos("n.txt"))
		require.NoError(t, err)
	}

	require.NoError(t, rec.Err())
	assert.Equal(t, 4, rec.Recorded())

	calls, err := l.Calls(ctx)
	require.NoError(t, err)
	require.Len(t, calls, 2)
	for _, c := range calls {
		assert.False(t, c.Leaked(), c.CallID)
		assert.Equal(t, "noop", c.Function)
	}
}

func TestRecorder_KeepsFirstError(t *testing.T) {
	l := createTestLedger(t)
	ctx := context.Background()
	rec := l.Observer(ctx, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec.Observe(event("x", wrap.StateClosed))
	rec.Observe(event("y", wrap.StateClosed))
	rec.Observe(event("z", wrap.StateOpen))

	err := rec.Err()
	require.Error(t, err)
	assert.True(t, IsOrphanClose(err))
	assert.Contains(t, err.Error(), "call x")
	assert.Equal(t, 1, rec.Recorded())
}

func TestClock(t *testing.T) {
	c := NewClockAt(10)
	assert.Equal(t, int64(10), c.Current())
	assert.Equal(t, int64(11), c.Next())
	assert.Equal(t, int64(1), NewClock().Next())
}

func TestRecorder_ReusedCallIDIsDuplicate(t *testing.T) {
	l := createTestLedger(t)
	ctx := context.Background()
	rec := l.Observer(ctx, slog.New(slog.NewTextHandler(io.Discard, nil)))

	opener := testutil.NewRecordingOpener(map[string]string{"n.txt": "1"})
	w, err := wrap.Wrap(func(context.Context, wrap.Args) (any, error) { return nil, nil },
		signature.Of(signature.Positional("src")),
		wrap.WithOpener(opener.Open),
		wrap.WithObserver(rec),
		wrap.WithIDGenerator(testutil.NewFixedIDGenerator("same")),
	)
	require.NoError(t, err)

	for range 2 {
		_, err := w.Call(ctx, wrap.Pos("n.txt"))
		require.NoError(t, err, "recording failures never fail the call")
	}

	assert.True(t, IsDuplicateTransition(rec.Err()))
	assert.Equal(t, 2, rec.Recorded())
	assert.Equal(t, 2, opener.OpenCount())
}

func TestRecord_SeqsComeFromClockInOrder(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewSeqClockFrom(100)

	replay := func() []Entry {
		l, err := Open(filepath.Join(t.TempDir(), "ledger.db"), WithClock(clock))
		require.NoError(t, err)
		defer l.Close()

		require.NoError(t, l.Record(ctx, event("a", wrap.StateOpen)))
		require.NoError(t, l.Record(ctx, event("b", wrap.StateOpen)))
		require.NoError(t, l.Record(ctx, event("a", wrap.StateClosed)))

		entries, err := l.Events(ctx, "")
		require.NoError(t, err)
		return entries
	}

	first := replay()
	seqs := make([]int64, 0, len(first))
	for _, e := range first {
		seqs = append(seqs, e.Seq)
	}
	assert.Equal(t, clock.Issued(), seqs)
	assert.Equal(t, []int64{100, 101, 102}, seqs)

	clock.Rewind()
	assert.Equal(t, first, replay())
}
