package cli

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestSession_FailLogsUnwritableResponse(t *testing.T) {
	var logs bytes.Buffer
	opts := &RootOptions{Format: "json"}
	s := &session{
		opts:   opts,
		out:    &OutputFormatter{Format: "json", Writer: brokenWriter{}},
		logger: slog.New(slog.NewTextHandler(&logs, nil)),
	}

	cause := errors.New("boom")
	err := s.fail(ExitFailure, "sum failed", cause)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, logs.String(), "failed to write error response")
	assert.Contains(t, logs.String(), "disk full")
}

func TestSession_FailTextModeWritesNothing(t *testing.T) {
	var out, logs bytes.Buffer
	s := &session{
		opts:   &RootOptions{Format: "text"},
		out:    &OutputFormatter{Format: "text", Writer: &out},
		logger: slog.New(slog.NewTextHandler(&logs, nil)),
	}

	err := s.fail(ExitCommandError, "invalid sum configuration", errors.New("bad"))
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Empty(t, out.String())
	assert.Empty(t, logs.String())
}
