// Package param classifies declared operation arguments and binds call-time
// values onto compiled queries.
//
// A declared argument is either special (a Pageable or a Sort, consumed by
// the engine for windowing and ordering) or bindable (fed to a query
// placeholder). Bindable arguments are either all named or all positional.
package param

import (
	"errors"
	"fmt"
	"strconv"
)

// Special argument type tags.
const (
	TypePageable = "Pageable"
	TypeSort     = "Sort"
)

var (
	// ErrInvalidParameterConfiguration is returned when declared arguments
	// break the special-argument or naming rules, or do not match the
	// number of arguments a query consumes.
	ErrInvalidParameterConfiguration = errors.New("invalid parameter configuration")

	// ErrArgumentCountMismatch is returned when the number of call-time
	// values differs from the number of declared arguments.
	ErrArgumentCountMismatch = errors.New("argument count mismatch")

	// ErrInvalidArgument is returned when a special argument receives a value
	// of the wrong type.
	ErrInvalidArgument = errors.New("invalid argument")
)

// ConfigError reports the declared argument that broke a rule.
// Index is -1 when the failure is not tied to one argument.
type ConfigError struct {
	Index  int
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%v: %s", ErrInvalidParameterConfiguration, e.Reason)
	}
	return fmt.Sprintf("%v: argument %d: %s", ErrInvalidParameterConfiguration, e.Index, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidParameterConfiguration }

// Decl describes one declared argument.
type Decl struct {
	Type string `json:"type" yaml:"type"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// IsSpecial reports whether the declared type is Pageable or Sort.
func (d Decl) IsSpecial() bool {
	return d.Type == TypePageable || d.Type == TypeSort
}

// Parameter is one classified argument.
type Parameter struct {
	index    int
	position int
	typ      string
	name     string
}

// Index returns the argument's zero-based declaration index.
func (p Parameter) Index() int { return p.index }

// Type returns the declared type tag.
func (p Parameter) Type() string { return p.typ }

// Name returns the bound name, or "" for positional arguments.
func (p Parameter) Name() string { return p.name }

// IsSpecial reports whether the argument is a Pageable or a Sort.
func (p Parameter) IsSpecial() bool { return p.typ == TypePageable || p.typ == TypeSort }

// IsBindable reports whether the argument feeds a query placeholder.
func (p Parameter) IsBindable() bool { return !p.IsSpecial() }

// IsNamed reports whether the argument binds by name.
func (p Parameter) IsNamed() bool { return p.name != "" }

// Position returns the argument's zero-based position among bindable
// arguments, or -1 for special arguments.
func (p Parameter) Position() int { return p.position }

// Placeholder returns ":name" for named arguments and "?" otherwise.
func (p Parameter) Placeholder() string {
	if p.IsNamed() {
		return ":" + p.name
	}
	return "?"
}

func (p Parameter) String() string {
	if p.IsNamed() {
		return p.typ + " " + p.name
	}
	return p.typ + " #" + strconv.Itoa(p.index)
}

// Parameters is the immutable classification of a declared argument list.
type Parameters struct {
	params        []Parameter
	pageableIndex int
	sortIndex     int
	bindable      int
	named         bool
}

// Build classifies decls. It fails with ErrInvalidParameterConfiguration
// when a special type appears twice, a special argument is named, or some
// but not all bindable arguments are named.
func Build(decls ...Decl) (*Parameters, error) {
	ps := &Parameters{
		params:        make([]Parameter, 0, len(decls)),
		pageableIndex: -1,
		sortIndex:     -1,
	}

	firstNamed, firstUnnamed := -1, -1
	for i, d := range decls {
		if d.Type == "" {
			return nil, &ConfigError{Index: i, Reason: "type is required"}
		}
		p := Parameter{index: i, position: -1, typ: d.Type, name: d.Name}

		switch d.Type {
		case TypePageable:
			if ps.pageableIndex >= 0 {
				return nil, &ConfigError{Index: i, Reason: fmt.Sprintf("second Pageable argument, first at %d", ps.pageableIndex)}
			}
			ps.pageableIndex = i
		case TypeSort:
			if ps.sortIndex >= 0 {
				return nil, &ConfigError{Index: i, Reason: fmt.Sprintf("second Sort argument, first at %d", ps.sortIndex)}
			}
			ps.sortIndex = i
		}

		if p.IsSpecial() {
			if d.Name != "" {
				return nil, &ConfigError{Index: i, Reason: fmt.Sprintf("special %s argument cannot be named %q", d.Type, d.Name)}
			}
			ps.params = append(ps.params, p)
			continue
		}

		p.position = ps.bindable
		ps.bindable++
		if d.Name != "" {
			if firstNamed < 0 {
				firstNamed = i
			}
		} else if firstUnnamed < 0 {
			firstUnnamed = i
		}
		ps.params = append(ps.params, p)
	}

	if firstNamed >= 0 && firstUnnamed >= 0 {
		idx := max(firstNamed, firstUnnamed)
		return nil, &ConfigError{Index: idx, Reason: "either all or none of the bindable arguments must be named"}
	}
	ps.named = firstNamed >= 0

	seen := make(map[string]int)
	for _, p := range ps.params {
		if !p.IsNamed() {
			continue
		}
		if prev, dup := seen[p.name]; dup {
			return nil, &ConfigError{Index: p.index, Reason: fmt.Sprintf("name %q already used by argument %d", p.name, prev)}
		}
		seen[p.name] = p.index
	}

	return ps, nil
}

// MustBuild is like Build but panics on error.
func MustBuild(decls ...Decl) *Parameters {
	ps, err := Build(decls...)
	if err != nil {
		panic(err)
	}
	return ps
}

// Len returns the number of declared arguments.
func (ps *Parameters) Len() int { return len(ps.params) }

// At returns the argument at declaration index i.
func (ps *Parameters) At(i int) Parameter { return ps.params[i] }

// All returns a copy of the classified arguments.
func (ps *Parameters) All() []Parameter {
	out := make([]Parameter, len(ps.params))
	copy(out, ps.params)
	return out
}

// Bindable returns the bindable arguments in declaration order.
func (ps *Parameters) Bindable() []Parameter {
	out := make([]Parameter, 0, ps.bindable)
	for _, p := range ps.params {
		if p.IsBindable() {
			out = append(out, p)
		}
	}
	return out
}

// BindableCount returns the number of bindable arguments.
func (ps *Parameters) BindableCount() int { return ps.bindable }

// Named reports whether bindable arguments bind by name.
func (ps *Parameters) Named() bool { return ps.named }

// PageableIndex returns the index of the Pageable argument, or -1.
func (ps *Parameters) PageableIndex() int { return ps.pageableIndex }

// SortIndex returns the index of the Sort argument, or -1.
func (ps *Parameters) SortIndex() int { return ps.sortIndex }

// HasPageable reports whether a Pageable argument is declared.
func (ps *Parameters) HasPageable() bool { return ps.pageableIndex >= 0 }

// HasSort reports whether a Sort argument is declared.
func (ps *Parameters) HasSort() bool { return ps.sortIndex >= 0 }

// Names returns the bound names of bindable arguments in position order,
// or nil when arguments are positional.
func (ps *Parameters) Names() []string {
	if !ps.named {
		return nil
	}
	names := make([]string, 0, ps.bindable)
	for _, p := range ps.params {
		if p.IsBindable() {
			names = append(names, p.name)
		}
	}
	return names
}
