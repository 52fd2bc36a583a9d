// Package queryir provides the predicate intermediate representation shared
// by the operation-name parser, the specification combinators and the SQL
// compiler.
//
// ARCHITECTURE:
//
//	[operation name] → parser ─┐
//	                           ├→ [Tree] → querysql → SQL + count SQL
//	[Spec combinators] ────────┘
//
// TREE:
//
// A Tree is a closed, tagged-variant predicate: every node is one of
// Leaf, And, Or or Not. Nodes live in an arena slice and refer to their
// children by index, so a Tree is a plain value that can be copied,
// compared and shared between goroutines without pointer aliasing.
//
// The zero Tree is the absent predicate. It compiles to "select all" and is
// the identity of both AndOf and OrOf:
//
//	AndOf(Tree{}, p) == p
//	OrOf(Tree{}, p)  == p
//
// LEAVES:
//
// A leaf compares one property path with either a call-time argument
// (Arg >= 0, the zero-based position among the bindable arguments) or a
// literal value carried in the tree (Arg == NoArg). Parsed operations only
// produce argument leaves; specifications only produce literal leaves.
//
// Trees are immutable: combinators copy both operands into a fresh arena.
package queryir
