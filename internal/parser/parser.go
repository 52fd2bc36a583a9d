package parser

import (
	"errors"
	"slices"
	"strings"

	"github.com/ginhom/hades/internal/metamodel"
	"github.com/ginhom/hades/internal/paging"
	"github.com/ginhom/hades/internal/queryir"
)

// DefaultPrefixes are the prefixes recognised when none are configured.
var DefaultPrefixes = []string{"findBy", "readBy", "getBy", "queryBy", "countBy"}

// Shape is the result shape an operation produces.
type Shape int

const (
	ShapeUnspecified Shape = iota
	ShapeCollection
	ShapeSingle
	ShapeCount
)

func (s Shape) String() string {
	switch s {
	case ShapeCollection:
		return "collection"
	case ShapeSingle:
		return "single"
	case ShapeCount:
		return "count"
	default:
		return "unspecified"
	}
}

// ParseShape maps "collection", "single" and "count" to a Shape.
// The empty string is ShapeUnspecified.
func ParseShape(s string) (Shape, bool) {
	switch strings.ToLower(s) {
	case "":
		return ShapeUnspecified, true
	case "collection", "list":
		return ShapeCollection, true
	case "single", "one":
		return ShapeSingle, true
	case "count":
		return ShapeCount, true
	}
	return ShapeUnspecified, false
}

// Connector joins two adjacent parts of a subject.
type Connector int

const (
	ConnectorAnd Connector = iota
	ConnectorOr
)

func (c Connector) String() string {
	if c == ConnectorOr {
		return "Or"
	}
	return "And"
}

// Part is one comparison of a parsed subject.
type Part struct {
	Segment    string // source text, e.g. "FirstnameLike"
	Property   string // resolved dotted path, e.g. "firstname"
	Comparator queryir.Comparator
}

// ParsedOperation is the structured form of an operation identifier.
// It is immutable once returned by Parse.
type ParsedOperation struct {
	Identifier string
	Prefix     string
	Subject    string
	Parts      []Part
	Connectors []Connector // Connectors[i] joins Parts[i] and Parts[i+1]
	Sort       paging.Sort
	Shape      Shape
}

// ArgCount returns the number of bindable arguments the parts consume.
func (op *ParsedOperation) ArgCount() int {
	n := 0
	for _, p := range op.Parts {
		n += p.Comparator.Arity()
	}
	return n
}

// Tree folds the parts into a predicate tree strictly left to right:
// A Or B And C becomes And(Or(A, B), C). Arguments are numbered in part
// order. An operation without parts yields the empty tree.
func (op *ParsedOperation) Tree() queryir.Tree {
	var tree queryir.Tree
	arg := 0
	for i, part := range op.Parts {
		leaf := queryir.ArgLeaf(part.Property, part.Comparator, arg)
		arg += part.Comparator.Arity()
		if i == 0 {
			tree = leaf
			continue
		}
		if op.Connectors[i-1] == ConnectorOr {
			tree = queryir.OrOf(tree, leaf)
		} else {
			tree = queryir.AndOf(tree, leaf)
		}
	}
	return tree
}

// Parser parses identifiers against a set of prefixes.
// A Parser is immutable and safe for concurrent use.
type Parser struct {
	prefixes []string
}

// Option configures a Parser.
type Option func(*Parser)

// WithPrefixes replaces the recognised prefixes.
func WithPrefixes(prefixes ...string) Option {
	return func(p *Parser) {
		p.prefixes = slices.Clone(prefixes)
	}
}

// New returns a Parser. Without options it recognises DefaultPrefixes.
func New(opts ...Option) *Parser {
	p := &Parser{prefixes: slices.Clone(DefaultPrefixes)}
	for _, opt := range opts {
		opt(p)
	}
	// Longest prefix first so "findAllBy" wins over "find".
	slices.SortStableFunc(p.prefixes, func(a, b string) int {
		return len(b) - len(a)
	})
	return p
}

// Prefixes returns the recognised prefixes, longest first.
func (p *Parser) Prefixes() []string {
	return slices.Clone(p.prefixes)
}

// Parse parses identifier with the default prefixes.
func Parse(identifier string, entity *metamodel.Entity) (*ParsedOperation, error) {
	return New().Parse(identifier, entity)
}

// Parse derives a ParsedOperation from identifier for entity.
func (p *Parser) Parse(identifier string, entity *metamodel.Entity) (*ParsedOperation, error) {
	if entity == nil {
		return nil, invalid(identifier, "no entity given")
	}
	identifier = normalize(identifier)

	prefix, err := p.matchPrefix(identifier)
	if err != nil {
		return nil, err
	}

	op := &ParsedOperation{
		Identifier: identifier,
		Prefix:     prefix,
		Subject:    strings.TrimPrefix(identifier, prefix),
		Shape:      ShapeCollection,
	}
	if strings.HasPrefix(strings.ToLower(prefix), "count") {
		op.Shape = ShapeCount
	}

	if op.Subject == "" {
		return op, nil
	}
	if !validIdentifierText(op.Subject) || !startsUpper(op.Subject) {
		return nil, invalid(identifier, "subject %q must be camel-case letters and digits", op.Subject)
	}

	subject, order := splitOrderClause(splitWords(op.Subject))
	if order != nil {
		op.Sort, err = parseOrderClause(identifier, order, entity)
		if err != nil {
			return nil, err
		}
	}

	if err := op.parseSubject(subject, entity); err != nil {
		return nil, err
	}
	return op, nil
}

func (p *Parser) matchPrefix(identifier string) (string, error) {
	if len(p.prefixes) == 0 {
		return "", invalid(identifier, "no prefixes configured")
	}
	for _, prefix := range p.prefixes {
		if prefix == "" {
			return "", invalid(identifier, "empty prefix configured")
		}
		if strings.HasPrefix(identifier, prefix) {
			return prefix, nil
		}
	}
	return "", invalid(identifier, "must start with one of %v", p.prefixes)
}

// splitOrderClause splits words at the first Order, By pair. order is nil
// when no clause is present and empty when the clause has no properties.
func splitOrderClause(words []string) (subject, order []string) {
	for i := 0; i+1 < len(words); i++ {
		if words[i] == "Order" && words[i+1] == "By" {
			return words[:i], append([]string{}, words[i+2:]...)
		}
	}
	return words, nil
}

func (op *ParsedOperation) parseSubject(words []string, entity *metamodel.Entity) error {
	if len(words) == 0 {
		return nil
	}

	var segment []string
	flush := func() error {
		if len(segment) == 0 {
			return invalid(op.Identifier, "empty predicate around And/Or")
		}
		part, err := parsePart(op.Identifier, segment, entity)
		if err != nil {
			return err
		}
		op.Parts = append(op.Parts, part)
		segment = nil
		return nil
	}

	for _, w := range words {
		switch w {
		case "And", "Or":
			if err := flush(); err != nil {
				return err
			}
			if w == "Or" {
				op.Connectors = append(op.Connectors, ConnectorOr)
			} else {
				op.Connectors = append(op.Connectors, ConnectorAnd)
			}
		default:
			segment = append(segment, w)
		}
	}
	return flush()
}

// suffix maps a trailing keyword sequence to a comparator.
type suffix struct {
	words      []string
	comparator queryir.Comparator
}

// suffixes are matched longest first.
var suffixes = func() []suffix {
	s := []suffix{
		{[]string{"Is", "Not", "Null"}, queryir.IsNotNull},
		{[]string{"Not", "Null"}, queryir.IsNotNull},
		{[]string{"Is", "Null"}, queryir.IsNull},
		{[]string{"Null"}, queryir.IsNull},
		{[]string{"Not", "Like"}, queryir.NotLike},
		{[]string{"Is", "Like"}, queryir.Like},
		{[]string{"Like"}, queryir.Like},
		{[]string{"Is", "Not"}, queryir.NotEqual},
		{[]string{"Not"}, queryir.NotEqual},
		{[]string{"Less", "Than", "Equal"}, queryir.LessThanEqual},
		{[]string{"Less", "Than"}, queryir.LessThan},
		{[]string{"Greater", "Than", "Equal"}, queryir.GreaterThanEqual},
		{[]string{"Greater", "Than"}, queryir.GreaterThan},
		{[]string{"Before"}, queryir.LessThan},
		{[]string{"After"}, queryir.GreaterThan},
		{[]string{"Starting", "With"}, queryir.StartingWith},
		{[]string{"Ending", "With"}, queryir.EndingWith},
		{[]string{"Containing"}, queryir.Containing},
		{[]string{"Is", "True"}, queryir.IsTrue},
		{[]string{"True"}, queryir.IsTrue},
		{[]string{"Is", "False"}, queryir.IsFalse},
		{[]string{"False"}, queryir.IsFalse},
		{[]string{"Equals"}, queryir.Equal},
		{[]string{"Is"}, queryir.Equal},
	}
	slices.SortStableFunc(s, func(a, b suffix) int {
		return len(b.words) - len(a.words)
	})
	return s
}()

func parsePart(identifier string, words []string, entity *metamodel.Entity) (Part, error) {
	part := Part{Segment: strings.Join(words, ""), Comparator: queryir.Equal}

	property := words
	for _, sfx := range suffixes {
		if len(sfx.words) < len(words) && slices.Equal(words[len(words)-len(sfx.words):], sfx.words) {
			property = words[:len(words)-len(sfx.words)]
			part.Comparator = sfx.comparator
			break
		}
	}

	if path, ok := resolvePath(entity, nil, property); ok {
		part.Property = path
		return part, nil
	}
	// A property whose name ends in a keyword, e.g. "birthdayBefore".
	if len(property) != len(words) {
		if path, ok := resolvePath(entity, nil, words); ok {
			part.Property = path
			part.Comparator = queryir.Equal
			return part, nil
		}
	}

	return Part{}, &NameError{
		Identifier: identifier,
		Reason:     "segment does not map to a property",
		Err:        &metamodel.PropertyError{Entity: entity.Name(), Path: strings.Join(property, "")},
	}
}

// resolvePath maps camel-case words to a leaf property path. It tries the
// longest head first and descends into object properties for the rest.
func resolvePath(entity *metamodel.Entity, parent *metamodel.Property, words []string) (string, bool) {
	for n := len(words); n >= 1; n-- {
		prop := entity.Lookup(parent, strings.Join(words[:n], ""))
		if prop == nil {
			continue
		}
		if n == len(words) {
			if prop.IsLeaf() {
				return prop.Path, true
			}
			continue
		}
		if prop.IsLeaf() {
			continue
		}
		if path, ok := resolvePath(entity, prop, words[n:]); ok {
			return path, true
		}
	}
	return "", false
}

func parseOrderClause(identifier string, words []string, entity *metamodel.Entity) (paging.Sort, error) {
	var orders []paging.Order
	var current []string

	add := func(dir paging.Direction) error {
		if len(current) == 0 {
			return invalid(identifier, "order clause has a direction without a property")
		}
		path, ok := resolvePath(entity, nil, current)
		if !ok {
			return &NameError{
				Identifier: identifier,
				Reason:     "order clause does not map to a property",
				Err:        &metamodel.PropertyError{Entity: entity.Name(), Path: strings.Join(current, "")},
			}
		}
		orders = append(orders, paging.Order{Direction: dir, Property: path})
		current = nil
		return nil
	}

	for _, w := range words {
		var err error
		switch w {
		case "Asc":
			err = add(paging.Asc)
		case "Desc":
			err = add(paging.Desc)
		default:
			current = append(current, w)
		}
		if err != nil {
			return paging.Sort{}, err
		}
	}
	if len(current) > 0 {
		if err := add(paging.Asc); err != nil {
			return paging.Sort{}, err
		}
	}

	sort, err := paging.By(orders...)
	if err != nil {
		return paging.Sort{}, &NameError{Identifier: identifier, Reason: "empty order clause", Err: err}
	}
	return sort, nil
}

// IsInvalidOperationName reports whether err is, or wraps, ErrInvalidOperationName.
func IsInvalidOperationName(err error) bool {
	return errors.Is(err, ErrInvalidOperationName)
}
