package querysql

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ginhom/hades/internal/metamodel"
	"github.com/ginhom/hades/internal/param"
	"github.com/ginhom/hades/internal/paging"
	"github.com/ginhom/hades/internal/queryir"
)

// ErrNamedLiteral is returned when a tree mixes literal leaves with
// arguments bound by name.
var ErrNamedLiteral = errors.New("literal values cannot be mixed with named arguments")

// Compiler compiles queryir selects to parameterized SQL.
//
// All values are parameterized, never interpolated. Output is
// deterministic: the same input always yields the same text.
type Compiler struct {
	dialect Dialect
}

// NewCompiler returns a Compiler for d. A nil dialect means SQLite.
func NewCompiler(d Dialect) *Compiler {
	if d == nil {
		d = SQLite
	}
	return &Compiler{dialect: d}
}

// Dialect returns the compiler's dialect.
func (c *Compiler) Dialect() Dialect { return c.dialect }

// Compiled is the SQL for one select. It is immutable and safe to share.
type Compiled struct {
	// SQL selects the entity columns, filtered and ordered.
	SQL string
	// CountSQL counts the filtered rows. It never carries ORDER BY.
	CountSQL string
	// Sort is the compile-time sort, zero when the select had none.
	Sort paging.Sort
	// Literals are the values of literal leaves in placeholder order.
	Literals []any

	entity  *metamodel.Entity
	dialect Dialect
	slots   []slot
	named   bool
}

// slot is one placeholder: an argument position or a literal.
type slot struct {
	arg     int
	literal int
}

// Sorted reports whether a compile-time sort was applied.
func (c *Compiled) Sorted() bool { return !c.Sort.IsZero() }

// Entity returns the entity the query selects from.
func (c *Compiled) Entity() *metamodel.Entity { return c.entity }

// Placeholders returns the number of placeholders in the filter.
func (c *Compiled) Placeholders() int { return len(c.slots) }

// Args returns the driver arguments for b in placeholder order.
func (c *Compiled) Args(b param.Bound) ([]any, error) {
	if c.named {
		return c.dialect.NamedArgs(b.Named), nil
	}
	args := make([]any, len(c.slots))
	for i, s := range c.slots {
		if s.arg == queryir.NoArg {
			args[i] = c.Literals[s.literal]
			continue
		}
		if s.arg >= len(b.Args) {
			return nil, fmt.Errorf("%w: placeholder %d needs argument %d, %d bound",
				param.ErrArgumentCountMismatch, i+1, s.arg, len(b.Args))
		}
		args[i] = b.Args[s.arg]
	}
	return args, nil
}

// Compile compiles sel. names holds the bound names of the arguments in
// position order and is nil for positional binding.
//
// Unknown properties fail with metamodel.ErrUnknownProperty. The absent
// predicate compiles to a query without WHERE.
func (c *Compiler) Compile(sel queryir.Select, names []string) (*Compiled, error) {
	if err := queryir.Validate(sel); err != nil {
		return nil, err
	}

	out := &Compiled{
		Sort:    sel.Sort,
		entity:  sel.From,
		dialect: c.dialect,
		named:   names != nil,
	}

	e := &emitter{compiled: out, dialect: c.dialect, entity: sel.From, names: names}
	var where string
	if !sel.Filter.IsEmpty() {
		var err error
		where, err = e.emit(sel.Filter, sel.Filter.Root())
		if err != nil {
			return nil, err
		}
	}

	cols := sel.From.Columns()
	for i, col := range cols {
		cols[i] = c.dialect.Ident(col)
	}
	table := c.dialect.Ident(sel.From.Table())
	base := fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), table)
	count := "SELECT COUNT(*) FROM " + table
	if where != "" {
		base += " WHERE " + where
		count += " WHERE " + where
	}

	sql, err := ApplySort(base, c.dialect, sel.From, sel.Sort)
	if err != nil {
		return nil, err
	}
	out.SQL = sql
	out.CountSQL = count
	return out, nil
}

type emitter struct {
	compiled *Compiled
	dialect  Dialect
	entity   *metamodel.Entity
	names    []string
}

// emit renders node i. Binary nodes are always parenthesized so
// left-to-right grouping survives.
func (e *emitter) emit(t queryir.Tree, i int) (string, error) {
	n := t.Node(i)
	switch n.Kind {
	case queryir.NodeLeaf:
		return e.leaf(n)
	case queryir.NodeNot:
		inner, err := e.emit(t, n.Left)
		if err != nil {
			return "", err
		}
		if k := t.Node(n.Left).Kind; k == queryir.NodeAnd || k == queryir.NodeOr {
			return "NOT " + inner, nil
		}
		return "NOT (" + inner + ")", nil
	case queryir.NodeAnd, queryir.NodeOr:
		l, err := e.emit(t, n.Left)
		if err != nil {
			return "", err
		}
		r, err := e.emit(t, n.Right)
		if err != nil {
			return "", err
		}
		op := " AND "
		if n.Kind == queryir.NodeOr {
			op = " OR "
		}
		return "(" + l + op + r + ")", nil
	default:
		return "", fmt.Errorf("%w: unknown node kind %d", queryir.ErrInvalidPredicate, n.Kind)
	}
}

func (e *emitter) leaf(n queryir.Node) (string, error) {
	col, err := e.entity.Column(n.Property)
	if err != nil {
		return "", err
	}
	col = e.dialect.Ident(col)

	switch n.Comparator {
	case queryir.IsNull:
		return col + " IS NULL", nil
	case queryir.IsNotNull:
		return col + " IS NOT NULL", nil
	case queryir.IsTrue:
		return col + " = " + e.dialect.Bool(true), nil
	case queryir.IsFalse:
		return col + " = " + e.dialect.Bool(false), nil
	}

	if n.Arg == queryir.NoArg && n.Value == nil {
		switch n.Comparator {
		case queryir.Equal:
			return col + " IS NULL", nil
		case queryir.NotEqual:
			return col + " IS NOT NULL", nil
		}
	}

	p, err := e.placeholder(n)
	if err != nil {
		return "", err
	}

	switch n.Comparator {
	case queryir.Equal:
		return col + " = " + p, nil
	case queryir.NotEqual:
		return col + " <> " + p, nil
	case queryir.Like:
		return col + " LIKE " + p, nil
	case queryir.NotLike:
		return col + " NOT LIKE " + p, nil
	case queryir.LessThan:
		return col + " < " + p, nil
	case queryir.LessThanEqual:
		return col + " <= " + p, nil
	case queryir.GreaterThan:
		return col + " > " + p, nil
	case queryir.GreaterThanEqual:
		return col + " >= " + p, nil
	case queryir.StartingWith:
		return col + " LIKE " + e.dialect.Pattern(p, false, true), nil
	case queryir.EndingWith:
		return col + " LIKE " + e.dialect.Pattern(p, true, false), nil
	case queryir.Containing:
		return col + " LIKE " + e.dialect.Pattern(p, true, true), nil
	default:
		return "", fmt.Errorf("%w: unsupported comparator %s", queryir.ErrInvalidPredicate, n.Comparator)
	}
}

func (e *emitter) placeholder(n queryir.Node) (string, error) {
	c := e.compiled
	if n.Arg == queryir.NoArg {
		if e.names != nil {
			return "", fmt.Errorf("%w: %s", ErrNamedLiteral, n.Property)
		}
		c.slots = append(c.slots, slot{arg: queryir.NoArg, literal: len(c.Literals)})
		c.Literals = append(c.Literals, n.Value)
		return e.dialect.Placeholder(len(c.slots)), nil
	}

	if e.names != nil {
		if n.Arg >= len(e.names) {
			return "", fmt.Errorf("%w: argument %d of %s has no bound name",
				param.ErrInvalidParameterConfiguration, n.Arg, n.Property)
		}
		c.slots = append(c.slots, slot{arg: n.Arg, literal: -1})
		return e.dialect.NamedPlaceholder(e.names[n.Arg]), nil
	}
	c.slots = append(c.slots, slot{arg: n.Arg, literal: -1})
	return e.dialect.Placeholder(len(c.slots)), nil
}
