package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/fnfn/internal/fileio"
	"github.com/roach88/fnfn/internal/wrap"
)

// Config is a loaded config file.
type Config struct {
	Commands map[string]Entry `yaml:"commands"`
}

// Entry overrides one command's wrap-time settings.
type Entry struct {
	// Param selects the handle parameter. Nil keeps the command default.
	Param *Param `yaml:"param"`

	// Open replaces the command's open options when non-nil.
	Open map[string]any `yaml:"open"`
}

// Param holds a parameter specifier exactly as written: an int for
// integer literals, a string for names, anything else as decoded.
type Param struct {
	Value any
}

// UnmarshalYAML keeps integer and string scalars typed by their tag.
func (p *Param) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		switch node.Tag {
		case "!!int":
			var i int
			if err := node.Decode(&i); err != nil {
				return err
			}
			p.Value = i
			return nil
		case "!!str":
			p.Value = node.Value
			return nil
		}
	}
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	p.Value = raw
	return nil
}

// Options converts the entry into wrapper options.
func (e Entry) Options() []wrap.Option {
	var opts []wrap.Option
	if e.Param != nil {
		opts = append(opts, wrap.WithParam(e.Param.Value))
	}
	if e.Open != nil {
		opts = append(opts, wrap.WithOpenOptions(fileio.Options(e.Open)))
	}
	return opts
}

// Command returns the entry for name; the zero Entry when absent.
func (c *Config) Command(name string) Entry {
	if c == nil {
		return Entry{}
	}
	return c.Commands[name]
}

// Names returns the configured command names in sorted order.
func (c *Config) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.Commands))
	for name := range c.Commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ErrUnsupportedFormat is returned for config files that are neither YAML
// nor CUE.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Load reads path, choosing the decoder by extension: .yaml/.yml or .cue.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".cue":
		return ParseCUE(data, path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ParseYAML decodes a YAML config. Unknown fields are rejected.
func ParseYAML(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &cfg, nil
}

// schema closes the config so misspelled fields are errors.
const schema = `
#Config: {
	commands?: [string]: {
		param?: _
		open?: {...}
	}
}
`

// ParseCUE evaluates a CUE config. filename is used in error positions.
func ParseCUE(data []byte, filename string) (*Config, error) {
	ctx := cuecontext.New()

	def := ctx.CompileString(schema).LookupPath(cue.ParsePath("#Config"))
	if err := def.Err(); err != nil {
		return nil, fmt.Errorf("config schema: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("failed to compile CUE: %w", err)
	}

	value = def.Unify(value)
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg := &Config{Commands: map[string]Entry{}}

	commandsVal := value.LookupPath(cue.ParsePath("commands"))
	if !commandsVal.Exists() {
		return cfg, nil
	}

	iter, err := commandsVal.Fields()
	if err != nil {
		return nil, fmt.Errorf("iterating commands: %w", err)
	}
	for iter.Next() {
		entry, err := entryFromCUE(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("command %s: %w", iter.Selector().Unquoted(), err)
		}
		cfg.Commands[iter.Selector().Unquoted()] = entry
	}

	return cfg, nil
}

func entryFromCUE(v cue.Value) (Entry, error) {
	var entry Entry

	paramVal := v.LookupPath(cue.ParsePath("param"))
	if paramVal.Exists() {
		p := &Param{}
		switch paramVal.Kind() {
		case cue.IntKind:
			i, err := paramVal.Int64()
			if err != nil {
				return Entry{}, fmt.Errorf("param: %w", err)
			}
			p.Value = int(i)
		case cue.StringKind:
			s, err := paramVal.String()
			if err != nil {
				return Entry{}, fmt.Errorf("param: %w", err)
			}
			p.Value = s
		default:
			if err := paramVal.Decode(&p.Value); err != nil {
				return Entry{}, fmt.Errorf("param: %w", err)
			}
		}
		entry.Param = p
	}

	openVal := v.LookupPath(cue.ParsePath("open"))
	if openVal.Exists() {
		open := map[string]any{}
		if err := openVal.Decode(&open); err != nil {
			return Entry{}, fmt.Errorf("open: %w", err)
		}
		entry.Open = open
	}

	return entry, nil
}
