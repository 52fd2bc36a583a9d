// Package metamodel describes the domain types queries are derived against:
// an entity's table and its property graph, including nested
// property-of-property paths and the column each leaf property maps to.
package metamodel

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"
)

// ErrUnknownProperty is returned when a property path does not resolve
// against an entity's property graph.
var ErrUnknownProperty = errors.New("unknown property")

// ErrInvalidEntity is returned for malformed entity declarations.
var ErrInvalidEntity = errors.New("invalid entity")

// IDProperty is the identifier property every entity carries.
const IDProperty = "id"

// Kind is the declared value type of a property.
type Kind string

const (
	KindString Kind = "string"
	KindInt    Kind = "int"
	KindBool   Kind = "bool"
	KindFloat  Kind = "float"
	KindTime   Kind = "time"
	KindObject Kind = "object" // embedded struct with child properties
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindString, KindInt, KindBool, KindFloat, KindTime, KindObject:
		return true
	}
	return false
}

// Property is one node of an entity's property graph.
//
// Leaf properties map to a column. Object properties hold children and
// never map to a column themselves.
type Property struct {
	Name     string
	Kind     Kind
	Path     string // dotted path from the entity root, e.g. "address.city"
	Column   string // empty for object properties
	Children []*Property
}

// IsLeaf reports whether the property maps to a column.
func (p *Property) IsLeaf() bool {
	return p.Kind != KindObject
}

// Field declares a leaf property.
func Field(name string, kind Kind) Property {
	return Property{Name: name, Kind: kind}
}

// Embedded declares an object property with the given children.
func Embedded(name string, children ...Property) Property {
	ptrs := make([]*Property, len(children))
	for i := range children {
		c := children[i]
		ptrs[i] = &c
	}
	return Property{Name: name, Kind: KindObject, Children: ptrs}
}

// PropertyError reports a path that could not be resolved.
type PropertyError struct {
	Entity string
	Path   string
}

func (e *PropertyError) Error() string {
	return fmt.Sprintf("%v: no property %q on %s", ErrUnknownProperty, e.Path, e.Entity)
}

// Unwrap lets errors.Is match ErrUnknownProperty.
func (e *PropertyError) Unwrap() error {
	return ErrUnknownProperty
}

// IsUnknownProperty reports whether err is, or wraps, an unknown property error.
func IsUnknownProperty(err error) bool {
	return errors.Is(err, ErrUnknownProperty)
}

// Entity is an immutable description of a domain type stored in one table.
type Entity struct {
	name     string
	table    string
	props    []*Property
	leaves   []*Property
	byPath   map[string]*Property
	byColumn map[string]string // column -> owning path
}

// NewEntity builds an entity. When table is empty it defaults to the
// snake_case entity name. An "id" string property is added first unless
// one is declared.
func NewEntity(name, table string, props ...Property) (*Entity, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: entity name is required", ErrInvalidEntity)
	}
	if table == "" {
		table = SnakeCase(name)
	}

	e := &Entity{
		name:     name,
		table:    table,
		byPath:   make(map[string]*Property),
		byColumn: make(map[string]string),
	}

	hasID := false
	for _, p := range props {
		if p.Name == IDProperty {
			hasID = true
		}
	}
	if !hasID {
		props = append([]Property{Field(IDProperty, KindString)}, props...)
	}

	for i := range props {
		p := props[i]
		if err := e.add(&p, nil); err != nil {
			return nil, err
		}
		e.props = append(e.props, &p)
	}

	return e, nil
}

// MustEntity is like NewEntity but panics on error. Intended for tests and
// static declarations.
func MustEntity(name, table string, props ...Property) *Entity {
	e, err := NewEntity(name, table, props...)
	if err != nil {
		panic(err)
	}
	return e
}

// add validates p, fills in its path and column, and indexes it.
func (e *Entity) add(p *Property, parent *Property) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: %s has a property without a name", ErrInvalidEntity, e.name)
	}
	if !p.Kind.Valid() {
		return fmt.Errorf("%w: %s.%s has unknown kind %q", ErrInvalidEntity, e.name, p.Name, p.Kind)
	}

	p.Path = p.Name
	if parent != nil {
		p.Path = parent.Path + "." + p.Name
	}
	if _, dup := e.byPath[p.Path]; dup {
		return fmt.Errorf("%w: %s declares %q twice", ErrInvalidEntity, e.name, p.Path)
	}
	e.byPath[p.Path] = p

	if p.IsLeaf() {
		if len(p.Children) > 0 {
			return fmt.Errorf("%w: %s.%s is a %s and cannot have children", ErrInvalidEntity, e.name, p.Path, p.Kind)
		}
		p.Column = SnakeCase(p.Name)
		if parent != nil {
			p.Column = parent.columnPrefix() + p.Column
		}
		if other, dup := e.byColumn[p.Column]; dup {
			return fmt.Errorf("%w: %s maps %q and %q to column %s",
				ErrInvalidEntity, e.name, other, p.Path, p.Column)
		}
		e.byColumn[p.Column] = p.Path
		e.leaves = append(e.leaves, p)
		return nil
	}

	if len(p.Children) == 0 {
		return fmt.Errorf("%w: %s.%s is an object without properties", ErrInvalidEntity, e.name, p.Path)
	}
	p.Children = slices.Clone(p.Children)
	for i, c := range p.Children {
		child := *c
		if err := e.add(&child, p); err != nil {
			return err
		}
		p.Children[i] = &child
	}
	return nil
}

func (p *Property) columnPrefix() string {
	return SnakeCase(strings.ReplaceAll(p.Path, ".", "_")) + "_"
}

// Name returns the entity name.
func (e *Entity) Name() string { return e.name }

// Table returns the table the entity is stored in.
func (e *Entity) Table() string { return e.table }

// Properties returns the root properties in declaration order.
func (e *Entity) Properties() []*Property { return e.props }

// Leaves returns every column-mapped property in declaration order.
func (e *Entity) Leaves() []*Property { return e.leaves }

// Columns returns the column names of all leaf properties in declaration order.
func (e *Entity) Columns() []string {
	cols := make([]string, len(e.leaves))
	for i, p := range e.leaves {
		cols[i] = p.Column
	}
	return cols
}

// Lookup finds the child of parent (or a root property when parent is nil)
// called name. Matching is exact first, then with a lowered first letter,
// then case-insensitive, so "Firstname" finds "firstname".
func (e *Entity) Lookup(parent *Property, name string) *Property {
	candidates := e.props
	if parent != nil {
		candidates = parent.Children
	}
	if name == "" {
		return nil
	}

	lowered := LowerFirst(name)
	var folded *Property
	for _, p := range candidates {
		if p.Name == name || p.Name == lowered {
			return p
		}
		if folded == nil && strings.EqualFold(p.Name, name) {
			folded = p
		}
	}
	return folded
}

// Resolve returns the leaf property at the dotted path.
func (e *Entity) Resolve(path string) (*Property, error) {
	if p, ok := e.byPath[path]; ok && p.IsLeaf() {
		return p, nil
	}

	var current *Property
	for _, segment := range strings.Split(path, ".") {
		current = e.Lookup(current, segment)
		if current == nil {
			return nil, &PropertyError{Entity: e.name, Path: path}
		}
	}
	if !current.IsLeaf() {
		return nil, &PropertyError{Entity: e.name, Path: path}
	}
	return current, nil
}

// HasProperty reports whether path resolves to a leaf property.
func (e *Entity) HasProperty(path string) bool {
	_, err := e.Resolve(path)
	return err == nil
}

// Column returns the column a property path maps to.
func (e *Entity) Column(path string) (string, error) {
	p, err := e.Resolve(path)
	if err != nil {
		return "", err
	}
	return p.Column, nil
}

// SnakeCase converts lowerCamel or UpperCamel text to snake_case.
func SnakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// LowerFirst lowers the first rune of s.
func LowerFirst(s string) string {
	for i, r := range s {
		return string(unicode.ToLower(r)) + s[i+len(string(r)):]
	}
	return s
}
