package signature

import (
	"fmt"
	"math"
	"slices"

	"golang.org/x/text/unicode/norm"
)

// Kind says how a caller may supply a parameter.
type Kind int

const (
	// PositionalOrNamed parameters may be supplied by position or by name.
	PositionalOrNamed Kind = iota

	// NamedOnly parameters may only be supplied by name.
	NamedOnly
)

// String returns a short label for the kind.
func (k Kind) String() string {
	switch k {
	case PositionalOrNamed:
		return "positional"
	case NamedOnly:
		return "named"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Param is one declared parameter.
type Param struct {
	Name string
	Kind Kind
}

// Positional declares a positional-or-named parameter.
func Positional(name string) Param {
	return Param{Name: name, Kind: PositionalOrNamed}
}

// Named declares a named-only parameter.
func Named(name string) Param {
	return Param{Name: name, Kind: NamedOnly}
}

// Signature is the declared parameter list of a function, in order.
type Signature struct {
	Params []Param
}

// Of builds a Signature from params.
func Of(params ...Param) Signature {
	return Signature{Params: params}
}

// Descriptor is the compiled, immutable form of a Signature.
//
// INVARIANTS:
//   - names are NFKC-normalized, non-empty and unique across both kinds
//   - positional order matches declaration order
type Descriptor struct {
	positional []string
	namedOnly  []string
	lazy       bool
}

// NewDescriptor compiles sig. lazy records whether invoking the function
// yields a lazy sequence rather than a single result.
func NewDescriptor(sig Signature, lazy bool) (*Descriptor, error) {
	d := &Descriptor{lazy: lazy}
	seen := make(map[string]bool, len(sig.Params))

	for i, p := range sig.Params {
		name := Canonical(p.Name)
		if name == "" {
			return nil, &ResolveError{
				Code:    ErrCodeInvalidSignature,
				Message: fmt.Sprintf("parameter %d has an empty name", i),
			}
		}
		if seen[name] {
			return nil, &ResolveError{
				Code:    ErrCodeInvalidSignature,
				Message: fmt.Sprintf("parameter %q declared twice", name),
			}
		}
		seen[name] = true

		switch p.Kind {
		case PositionalOrNamed:
			d.positional = append(d.positional, name)
		case NamedOnly:
			d.namedOnly = append(d.namedOnly, name)
		default:
			return nil, &ResolveError{
				Code:    ErrCodeInvalidSignature,
				Message: fmt.Sprintf("parameter %q has unknown kind %s", name, p.Kind),
			}
		}
	}

	return d, nil
}

// ParameterNames returns the positional-or-named parameters in order.
func (d *Descriptor) ParameterNames() []string {
	return slices.Clone(d.positional)
}

// KeywordOnlyNames returns the named-only parameters.
func (d *Descriptor) KeywordOnlyNames() []string {
	return slices.Clone(d.namedOnly)
}

// IsLazyProducer reports whether the function yields a lazy sequence.
func (d *Descriptor) IsLazyProducer() bool {
	return d.lazy
}

// NumPositional returns the number of positional-or-named parameters.
func (d *Descriptor) NumPositional() int {
	return len(d.positional)
}

// Slot returns the positional index of name, if it has one.
func (d *Descriptor) Slot(name string) (int, bool) {
	i := slices.Index(d.positional, Canonical(name))
	return i, i >= 0
}

// Has reports whether name is declared with either kind.
func (d *Descriptor) Has(name string) bool {
	name = Canonical(name)
	return slices.Contains(d.positional, name) || slices.Contains(d.namedOnly, name)
}

// Resolve resolves spec against this descriptor.
func (d *Descriptor) Resolve(spec any) (ArgSpec, error) {
	return Resolve(d.positional, d.namedOnly, spec)
}

// ArgSpec is the resolved identity of the resource parameter.
type ArgSpec struct {
	// Name is the canonical parameter name.
	Name string

	slot    int
	hasSlot bool
}

// PositionalSlot returns the parameter's positional index. ok is false for
// named-only parameters.
func (a ArgSpec) PositionalSlot() (slot int, ok bool) {
	return a.slot, a.hasSlot
}

// String renders the parameter as name or name@slot.
func (a ArgSpec) String() string {
	if a.hasSlot {
		return fmt.Sprintf("%s@%d", a.Name, a.slot)
	}
	return a.Name
}

// Resolve determines which parameter spec denotes.
//
// params are the positional-or-named names in order; namedOnly are the
// named-only names. Both are expected to be canonical already.
func Resolve(params, namedOnly []string, spec any) (ArgSpec, error) {
	if idx, ok := asIndex(spec); ok {
		n := int64(len(params))
		if idx < 0 {
			idx += n
		}
		if idx < 0 || idx >= n {
			return ArgSpec{}, newIndexError(spec, len(params))
		}
		return ArgSpec{Name: params[idx], slot: int(idx), hasSlot: true}, nil
	}

	name, ok := spec.(string)
	if !ok {
		return ArgSpec{}, newTypeError(spec)
	}
	name = Canonical(name)

	if i := slices.Index(params, name); i >= 0 {
		return ArgSpec{Name: name, slot: i, hasSlot: true}, nil
	}
	if slices.Contains(namedOnly, name) {
		return ArgSpec{Name: name}, nil
	}
	return ArgSpec{}, newUnknownError(name)
}

// Canonical returns the NFKC form of a parameter name.
func Canonical(name string) string {
	return norm.NFKC.String(name)
}

// asIndex converts any Go integer kind to int64. Unsigned values above
// MaxInt64 saturate, which still lands out of range.
func asIndex(spec any) (int64, bool) {
	switch v := spec.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return saturate(uint64(v)), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return saturate(v), true
	default:
		return 0, false
	}
}

func saturate(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}
