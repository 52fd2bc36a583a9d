// Package specification composes query predicates at call time.
//
//	s := specification.Where(specification.Equal("lastname", "Matthews")).
//		Or(specification.Like("firstname", "Dav%")).
//		And(specification.Not(specification.IsNull("age")))
//
// The zero Spec is the absent predicate and matches every row. Combining
// with it returns the other operand, so And(Spec{}, p) and Or(Spec{}, p)
// are both p. Chained calls fold strictly left to right.
package specification

import "github.com/ginhom/hades/internal/queryir"

// Spec is an immutable predicate over one entity's properties.
type Spec struct {
	tree queryir.Tree
}

// FromTree wraps a predicate tree.
func FromTree(t queryir.Tree) Spec { return Spec{tree: t} }

// Tree returns the underlying predicate tree.
func (s Spec) Tree() queryir.Tree { return s.tree }

// IsEmpty reports whether s is the absent predicate.
func (s Spec) IsEmpty() bool { return s.tree.IsEmpty() }

// And returns s AND other.
func (s Spec) And(other Spec) Spec { return Spec{tree: queryir.AndOf(s.tree, other.tree)} }

// Or returns s OR other.
func (s Spec) Or(other Spec) Spec { return Spec{tree: queryir.OrOf(s.tree, other.tree)} }

// Not returns the negation of s.
func (s Spec) Not() Spec { return Spec{tree: queryir.NotOf(s.tree)} }

// Equal reports structural equality.
func (s Spec) Equal(other Spec) bool { return s.tree.Equal(other.tree) }

func (s Spec) String() string { return s.tree.String() }

// Where returns s. It starts a fluent chain.
func Where(s Spec) Spec { return Spec{tree: queryir.Where(s.tree)} }

// And returns the conjunction of specs, folded left to right.
func And(specs ...Spec) Spec {
	var out Spec
	for _, s := range specs {
		out = out.And(s)
	}
	return out
}

// Or returns the disjunction of specs, folded left to right.
func Or(specs ...Spec) Spec {
	var out Spec
	for _, s := range specs {
		out = out.Or(s)
	}
	return out
}

// Not returns the negation of s. Not(Not(s)) is s.
func Not(s Spec) Spec { return s.Not() }

// All returns the absent predicate.
func All() Spec { return Spec{} }

func leaf(property string, cmp queryir.Comparator, value any) Spec {
	return Spec{tree: queryir.ValueLeaf(property, cmp, value)}
}

// Equal matches rows whose property equals value. A nil value matches NULL.
func Equal(property string, value any) Spec { return leaf(property, queryir.Equal, value) }

// NotEqual matches rows whose property differs from value.
func NotEqual(property string, value any) Spec { return leaf(property, queryir.NotEqual, value) }

// Like matches rows whose property matches a LIKE pattern.
func Like(property, pattern string) Spec { return leaf(property, queryir.Like, pattern) }

// NotLike matches rows whose property does not match a LIKE pattern.
func NotLike(property, pattern string) Spec { return leaf(property, queryir.NotLike, pattern) }

// LessThan matches rows whose property is below value.
func LessThan(property string, value any) Spec { return leaf(property, queryir.LessThan, value) }

// LessThanEqual matches rows whose property is at most value.
func LessThanEqual(property string, value any) Spec {
	return leaf(property, queryir.LessThanEqual, value)
}

// GreaterThan matches rows whose property is above value.
func GreaterThan(property string, value any) Spec { return leaf(property, queryir.GreaterThan, value) }

// GreaterThanEqual matches rows whose property is at least value.
func GreaterThanEqual(property string, value any) Spec {
	return leaf(property, queryir.GreaterThanEqual, value)
}

// StartingWith matches rows whose property begins with prefix.
func StartingWith(property, prefix string) Spec { return leaf(property, queryir.StartingWith, prefix) }

// EndingWith matches rows whose property ends with suffix.
func EndingWith(property, suffix string) Spec { return leaf(property, queryir.EndingWith, suffix) }

// Containing matches rows whose property contains infix.
func Containing(property, infix string) Spec { return leaf(property, queryir.Containing, infix) }

// IsNull matches rows whose property is NULL.
func IsNull(property string) Spec { return leaf(property, queryir.IsNull, nil) }

// IsNotNull matches rows whose property is not NULL.
func IsNotNull(property string) Spec { return leaf(property, queryir.IsNotNull, nil) }

// IsTrue matches rows whose boolean property is true.
func IsTrue(property string) Spec { return leaf(property, queryir.IsTrue, nil) }

// IsFalse matches rows whose boolean property is false.
func IsFalse(property string) Spec { return leaf(property, queryir.IsFalse, nil) }
