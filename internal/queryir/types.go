package queryir

import (
	"fmt"

	"github.com/ginhom/hades/internal/metamodel"
	"github.com/ginhom/hades/internal/paging"
)

// Comparator is the comparison a leaf applies to its property.
type Comparator int

const (
	Equal Comparator = iota
	NotEqual
	Like
	NotLike
	LessThan
	LessThanEqual
	GreaterThan
	GreaterThanEqual
	StartingWith
	EndingWith
	Containing
	IsNull
	IsNotNull
	IsTrue
	IsFalse
)

var comparatorNames = [...]string{
	Equal:            "Equal",
	NotEqual:         "NotEqual",
	Like:             "Like",
	NotLike:          "NotLike",
	LessThan:         "LessThan",
	LessThanEqual:    "LessThanEqual",
	GreaterThan:      "GreaterThan",
	GreaterThanEqual: "GreaterThanEqual",
	StartingWith:     "StartingWith",
	EndingWith:       "EndingWith",
	Containing:       "Containing",
	IsNull:           "IsNull",
	IsNotNull:        "IsNotNull",
	IsTrue:           "IsTrue",
	IsFalse:          "IsFalse",
}

func (c Comparator) String() string {
	if c < 0 || int(c) >= len(comparatorNames) {
		return fmt.Sprintf("Comparator(%d)", int(c))
	}
	return comparatorNames[c]
}

// ParseComparator returns the comparator with the given name, e.g.
// "GreaterThanEqual".
func ParseComparator(name string) (Comparator, error) {
	for i, n := range comparatorNames {
		if n == name {
			return Comparator(i), nil
		}
	}
	return 0, fmt.Errorf("unknown comparator %q", name)
}

// Arity returns how many values the comparator consumes: 1, or 0 for the
// null and boolean checks.
func (c Comparator) Arity() int {
	switch c {
	case IsNull, IsNotNull, IsTrue, IsFalse:
		return 0
	default:
		return 1
	}
}

// NodeKind tags the variant of a Node.
type NodeKind uint8

const (
	NodeLeaf NodeKind = iota
	NodeAnd
	NodeOr
	NodeNot
)

func (k NodeKind) String() string {
	switch k {
	case NodeLeaf:
		return "Leaf"
	case NodeAnd:
		return "And"
	case NodeOr:
		return "Or"
	case NodeNot:
		return "Not"
	default:
		return fmt.Sprintf("NodeKind(%d)", uint8(k))
	}
}

// NoArg marks a leaf that carries a literal value instead of an argument index.
const NoArg = -1

// Node is one arena entry of a Tree.
//
// Leaf uses Property, Comparator, Arg and Value. And and Or use Left and
// Right. Not uses Left only.
type Node struct {
	Kind       NodeKind
	Property   string
	Comparator Comparator
	Arg        int
	Value      any
	Left       int
	Right      int
}

// Select is a query over one entity: an optional filter and an optional
// sort. It is the input of the SQL compiler.
//
// Semantics:
//
//	SELECT <entity columns> FROM <entity table> WHERE <filter> ORDER BY <sort>
type Select struct {
	From   *metamodel.Entity
	Filter Tree        // zero Tree = no WHERE clause
	Sort   paging.Sort // zero Sort = no ORDER BY clause
}
