package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fnfn/internal/wrap"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Success(sumResult{Sum: 6}))

	var resp struct {
		Status string    `json:"status"`
		Data   sumResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 6, resp.Data.Sum)
}

func TestOutputFormatter_TextUsesTexter(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Success(catResult{Values: []int{1, 2}}))
	assert.Equal(t, "1\n2\n", buf.String())

	buf.Reset()
	require.NoError(t, formatter.Success("plain"))
	assert.Equal(t, "plain\n", buf.String())
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Error("INVALID_OPTION", "unknown option", map[string]string{"option": "colour"}))

	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_OPTION", resp.Error.Code)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_FailureUsesErrorCode(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Failure(&wrap.Error{Code: wrap.ErrCodeUnsupportedArgumentType, Message: "int"}))
	assert.Equal(t, "Error [UNSUPPORTED_ARGUMENT_TYPE]: UNSUPPORTED_ARGUMENT_TYPE: int\n", buf.String())

	buf.Reset()
	require.NoError(t, formatter.Failure(errors.New("disk full")))
	assert.Equal(t, "Error [ERROR]: disk full\n", buf.String())
}

func TestOutputFormatter_TextErrorDetailsOnlyWhenVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Error("X", "msg", "ctx"))
	assert.NotContains(t, buf.String(), "Details")

	formatter.Verbose = true
	require.NoError(t, formatter.Error("X", "msg", "ctx"))
	assert.Contains(t, buf.String(), "Details: ctx")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: errOut}

	formatter.VerboseLog("hidden %d", 1)
	assert.Empty(t, errOut.String())

	formatter.Verbose = true
	formatter.VerboseLog("shown %d", 2)
	assert.Equal(t, "shown 2\n", errOut.String())
	assert.Empty(t, out.String())

	formatter.ErrWriter = nil
	assert.Same(t, out, formatter.GetErrWriter())
}

func TestExitErrors(t *testing.T) {
	cause := errors.New("cause")
	wrapped := WrapExitError(ExitCommandError, "bad config", cause)

	assert.Equal(t, "bad config: cause", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
	assert.Equal(t, ExitFailure, GetExitCode(cause))
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, "plain", NewExitError(ExitFailure, "plain").Error())
}
