package wrap

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"sort"

	"github.com/roach88/fnfn/internal/signature"
)

// Args is the argument list of one call: positional values in order plus
// named values by parameter name.
//
// Wrapped functions receive canonical Args (see Bind). Use Get or Arg to
// read a parameter without caring how the caller supplied it.
type Args struct {
	Positional []any
	Named      map[string]any

	desc *signature.Descriptor
}

// Pos builds Args from positional values.
func Pos(vals ...any) Args {
	return Args{Positional: vals}
}

// With returns a copy of a with name set to v.
func (a Args) With(name string, v any) Args {
	named := maps.Clone(a.Named)
	if named == nil {
		named = make(map[string]any, 1)
	}
	named[name] = v
	return Args{Positional: slices.Clone(a.Positional), Named: named, desc: a.desc}
}

// Get returns the value supplied for the named parameter.
func (a Args) Get(name string) (any, bool) {
	name = signature.Canonical(name)
	if a.desc != nil {
		if slot, ok := a.desc.Slot(name); ok && slot < len(a.Positional) {
			return a.Positional[slot], true
		}
	}
	v, ok := a.Named[name]
	return v, ok
}

// Arg returns the named parameter as a T.
func Arg[T any](a Args, name string) (T, error) {
	var zero T
	v, ok := a.Get(name)
	if !ok {
		return zero, bindingError("missing required argument %q", name)
	}
	t, ok := v.(T)
	if !ok {
		return zero, bindingError("argument %q is %T, want %v", name, v, reflect.TypeFor[T]())
	}
	return t, nil
}

func (a Args) clone() Args {
	return Args{
		Positional: slices.Clone(a.Positional),
		Named:      maps.Clone(a.Named),
		desc:       a.desc,
	}
}

// Bind canonicalizes a against d.
//
// Positional values fill positional-or-named parameters in order. A
// positional-or-named parameter supplied by name moves into the positional
// list when every earlier slot is filled, so the same logical argument has
// one location whichever way the caller passed it. Missing parameters are
// left out; the function's own defaults govern them.
//
// The returned Args never aliases a's slice or map.
func Bind(d *signature.Descriptor, a Args) (Args, error) {
	params := d.ParameterNames()
	if len(a.Positional) > len(params) {
		return Args{}, bindingError("takes %d positional arguments but %d were given",
			len(params), len(a.Positional))
	}

	keys := make([]string, 0, len(a.Named))
	for k := range a.Named {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	named := make(map[string]any, len(a.Named))
	for _, k := range keys {
		name := signature.Canonical(k)
		if !d.Has(name) {
			return Args{}, bindingError("got an unexpected named argument %q", k)
		}
		if slot, ok := d.Slot(name); ok && slot < len(a.Positional) {
			return Args{}, bindingError("got multiple values for argument %q", name)
		}
		if _, dup := named[name]; dup {
			return Args{}, bindingError("got multiple values for argument %q", name)
		}
		named[name] = a.Named[k]
	}

	pos := slices.Clone(a.Positional)
	for len(pos) < len(params) {
		v, ok := named[params[len(pos)]]
		if !ok {
			break
		}
		delete(named, params[len(pos)])
		pos = append(pos, v)
	}

	return Args{Positional: pos, Named: named, desc: d}, nil
}

// location is where the handle argument lives within bound Args.
type location struct {
	name       string
	slot       int
	positional bool
}

func (l location) get(a Args) any {
	if l.positional {
		return a.Positional[l.slot]
	}
	return a.Named[l.name]
}

// set substitutes v in place.
func (l location) set(a Args, v any) {
	if l.positional {
		a.Positional[l.slot] = v
		return
	}
	a.Named[l.name] = v
}

func (l location) String() string {
	if l.positional {
		return fmt.Sprintf("positional[%d]", l.slot)
	}
	return fmt.Sprintf("named[%s]", l.name)
}

// locate finds the handle argument. ok is false when the caller did not
// supply it.
func locate(spec signature.ArgSpec, a Args) (location, bool) {
	if slot, ok := spec.PositionalSlot(); ok && slot < len(a.Positional) {
		return location{name: spec.Name, slot: slot, positional: true}, true
	}
	if _, ok := a.Named[spec.Name]; ok {
		return location{name: spec.Name}, true
	}
	return location{}, false
}
