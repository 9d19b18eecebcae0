package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fnfn/internal/fileio"
	"github.com/roach88/fnfn/internal/signature"
	"github.com/roach88/fnfn/internal/wrap"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const yamlConfig = `
commands:
  sum:
    param: -1
    open:
      encoding: utf-16le
      buffering: 1
  copy:
    param: dst
  odd:
    param: 1.5
`

const cueConfig = `
commands: {
	sum: {
		param: -1
		open: {encoding: "utf-16le", buffering: 1}
	}
	copy: param: "dst"
	odd: param: 1.5
}
`

func TestLoad_YAMLAndCUEAgree(t *testing.T) {
	fromYAML, err := Load(writeConfig(t, "fnfn.yaml", yamlConfig))
	require.NoError(t, err)
	fromCUE, err := Load(writeConfig(t, "fnfn.cue", cueConfig))
	require.NoError(t, err)

	assert.Equal(t, fromYAML, fromCUE)
	assert.Equal(t, []string{"copy", "odd", "sum"}, fromCUE.Names())
}

func TestLoad_ParamTypes(t *testing.T) {
	cfg, err := Load(writeConfig(t, "fnfn.yml", yamlConfig))
	require.NoError(t, err)

	assert.Equal(t, -1, cfg.Command("sum").Param.Value)
	assert.Equal(t, "dst", cfg.Command("copy").Param.Value)
	assert.Equal(t, 1.5, cfg.Command("odd").Param.Value)
	assert.Equal(t, map[string]any{"encoding": "utf-16le", "buffering": 1}, cfg.Command("sum").Open)
}

func TestParseYAML_QuotedNumberIsAName(t *testing.T) {
	cfg, err := ParseYAML([]byte("commands:\n  sum:\n    param: \"0\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "0", cfg.Command("sum").Param.Value)
}

func TestParseYAML_UnknownFieldRejected(t *testing.T) {
	_, err := ParseYAML([]byte("commands:\n  sum:\n    parm: 0\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parm")
}

func TestParseYAML_Empty(t *testing.T) {
	cfg, err := ParseYAML(nil)
	require.NoError(t, err)
	assert.Empty(t, cfg.Names())
}

func TestParseCUE_UnknownFieldRejected(t *testing.T) {
	_, err := ParseCUE([]byte(`commands: sum: parm: 0`), "bad.cue")
	require.Error(t, err)
}

func TestParseCUE_SyntaxError(t *testing.T) {
	_, err := ParseCUE([]byte(`commands: {`), "broken.cue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to compile CUE")
}

func TestParseCUE_NoCommands(t *testing.T) {
	cfg, err := ParseCUE([]byte(``), "empty.cue")
	require.NoError(t, err)
	assert.Empty(t, cfg.Commands)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(writeConfig(t, "fnfn.toml", ""))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCommand_MissingIsZero(t *testing.T) {
	var cfg *Config
	assert.Equal(t, Entry{}, cfg.Command("sum"))
	assert.Empty(t, Entry{}.Options())
}

func TestEntry_OptionsConfigureWrapper(t *testing.T) {
	cfg, err := ParseYAML([]byte(yamlConfig))
	require.NoError(t, err)

	sig := signature.Of(signature.Positional("label"), signature.Positional("src"))
	noop := func(context.Context, wrap.Args) (any, error) { return nil, nil }

	w, err := wrap.Wrap(noop, sig, cfg.Command("sum").Options()...)
	require.NoError(t, err)
	assert.Equal(t, "src@1", w.Spec().String())
	assert.Equal(t, "utf-16le", w.OpenConfig().Encoding)

	_, err = wrap.Wrap(noop, sig, cfg.Command("copy").Options()...)
	assert.True(t, signature.IsUnknownParameter(err))

	_, err = wrap.Wrap(noop, sig, cfg.Command("odd").Options()...)
	assert.True(t, signature.IsInvalidSpecifierType(err))
}

func TestEntry_BadOpenOptionSurfacesAtWrap(t *testing.T) {
	cfg, err := ParseYAML([]byte("commands:\n  sum:\n    open: {colour: red}\n"))
	require.NoError(t, err)

	_, err = wrap.Wrap(func(context.Context, wrap.Args) (any, error) { return nil, nil },
		signature.Of(signature.Positional("src")), cfg.Command("sum").Options()...)
	assert.True(t, fileio.IsInvalidOption(err))
}
