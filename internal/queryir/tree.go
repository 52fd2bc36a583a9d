package queryir

import (
	"fmt"
	"reflect"
	"strings"
)

// Tree is an immutable predicate stored as an arena of nodes.
// The zero Tree is the absent predicate ("select all").
type Tree struct {
	nodes []Node
	root  int
}

// ArgLeaf returns a single-leaf tree comparing property with the bindable
// argument at position arg. Nullary comparators ignore arg.
func ArgLeaf(property string, cmp Comparator, arg int) Tree {
	if cmp.Arity() == 0 {
		arg = NoArg
	}
	return Tree{nodes: []Node{{Kind: NodeLeaf, Property: property, Comparator: cmp, Arg: arg}}}
}

// ValueLeaf returns a single-leaf tree comparing property with a literal.
// Nullary comparators ignore value.
func ValueLeaf(property string, cmp Comparator, value any) Tree {
	if cmp.Arity() == 0 {
		value = nil
	}
	return Tree{nodes: []Node{{Kind: NodeLeaf, Property: property, Comparator: cmp, Arg: NoArg, Value: value}}}
}

// AndOf returns the conjunction of l and r. An absent operand yields the other.
func AndOf(l, r Tree) Tree {
	return combine(NodeAnd, l, r)
}

// OrOf returns the disjunction of l and r. An absent operand yields the other.
func OrOf(l, r Tree) Tree {
	return combine(NodeOr, l, r)
}

// NotOf returns the negation of p. Negating a negation returns the inner
// tree, and negating the absent predicate returns it unchanged.
func NotOf(p Tree) Tree {
	if p.IsEmpty() {
		return p
	}
	if root := p.nodes[p.root]; root.Kind == NodeNot {
		return p.Subtree(root.Left)
	}
	nodes := make([]Node, len(p.nodes), len(p.nodes)+1)
	copy(nodes, p.nodes)
	nodes = append(nodes, Node{Kind: NodeNot, Left: p.root})
	return Tree{nodes: nodes, root: len(nodes) - 1}
}

// Where returns p unchanged. It exists so call sites read as
// Where(p).And(q) in the specification package.
func Where(p Tree) Tree {
	return p
}

func combine(kind NodeKind, l, r Tree) Tree {
	if l.IsEmpty() {
		return r
	}
	if r.IsEmpty() {
		return l
	}

	offset := len(l.nodes)
	nodes := make([]Node, 0, len(l.nodes)+len(r.nodes)+1)
	nodes = append(nodes, l.nodes...)
	for _, n := range r.nodes {
		switch n.Kind {
		case NodeAnd, NodeOr:
			n.Left += offset
			n.Right += offset
		case NodeNot:
			n.Left += offset
		}
		nodes = append(nodes, n)
	}
	nodes = append(nodes, Node{Kind: kind, Left: l.root, Right: r.root + offset})
	return Tree{nodes: nodes, root: len(nodes) - 1}
}

// IsEmpty reports whether t is the absent predicate.
func (t Tree) IsEmpty() bool {
	return len(t.nodes) == 0
}

// Len returns the number of arena nodes.
func (t Tree) Len() int {
	return len(t.nodes)
}

// Root returns the index of the root node. It panics on an empty tree.
func (t Tree) Root() int {
	if t.IsEmpty() {
		panic("queryir: Root of empty tree")
	}
	return t.root
}

// Node returns the arena node at index i.
func (t Tree) Node(i int) Node {
	return t.nodes[i]
}

// Subtree copies the nodes reachable from index i into a new tree.
func (t Tree) Subtree(i int) Tree {
	nodes := make([]Node, 0, len(t.nodes))
	var copyNode func(int) int
	copyNode = func(i int) int {
		n := t.nodes[i]
		switch n.Kind {
		case NodeAnd, NodeOr:
			n.Left = copyNode(n.Left)
			n.Right = copyNode(n.Right)
		case NodeNot:
			n.Left = copyNode(n.Left)
		}
		nodes = append(nodes, n)
		return len(nodes) - 1
	}
	root := copyNode(i)
	return Tree{nodes: nodes, root: root}
}

// Leaves returns the leaf nodes in left-to-right order.
func (t Tree) Leaves() []Node {
	if t.IsEmpty() {
		return nil
	}
	var leaves []Node
	var walk func(int)
	walk = func(i int) {
		n := t.nodes[i]
		switch n.Kind {
		case NodeLeaf:
			leaves = append(leaves, n)
		case NodeAnd, NodeOr:
			walk(n.Left)
			walk(n.Right)
		case NodeNot:
			walk(n.Left)
		}
	}
	walk(t.root)
	return leaves
}

// ArgCount returns one more than the highest argument index referenced,
// or 0 when no leaf takes an argument.
func (t Tree) ArgCount() int {
	count := 0
	for _, l := range t.Leaves() {
		if l.Arg+1 > count {
			count = l.Arg + 1
		}
	}
	return count
}

// Equal reports structural equality. Arena layout is ignored: two trees
// are equal when their node graphs from the root match.
func (t Tree) Equal(other Tree) bool {
	if t.IsEmpty() || other.IsEmpty() {
		return t.IsEmpty() == other.IsEmpty()
	}
	var eq func(a, b int) bool
	eq = func(a, b int) bool {
		na, nb := t.nodes[a], other.nodes[b]
		if na.Kind != nb.Kind {
			return false
		}
		switch na.Kind {
		case NodeLeaf:
			return na.Property == nb.Property &&
				na.Comparator == nb.Comparator &&
				na.Arg == nb.Arg &&
				reflect.DeepEqual(na.Value, nb.Value)
		case NodeNot:
			return eq(na.Left, nb.Left)
		default:
			return eq(na.Left, nb.Left) && eq(na.Right, nb.Right)
		}
	}
	return eq(t.root, other.root)
}

// String renders the tree for diagnostics, e.g.
// Or(Equal(lastname, ?0), Like(firstname, ?1)).
func (t Tree) String() string {
	if t.IsEmpty() {
		return "All"
	}
	var b strings.Builder
	var write func(int)
	write = func(i int) {
		n := t.nodes[i]
		switch n.Kind {
		case NodeLeaf:
			b.WriteString(n.Comparator.String())
			b.WriteString("(")
			b.WriteString(n.Property)
			switch {
			case n.Comparator.Arity() == 0:
			case n.Arg != NoArg:
				fmt.Fprintf(&b, ", ?%d", n.Arg)
			default:
				fmt.Fprintf(&b, ", %#v", n.Value)
			}
			b.WriteString(")")
		case NodeNot:
			b.WriteString("Not(")
			write(n.Left)
			b.WriteString(")")
		default:
			b.WriteString(n.Kind.String())
			b.WriteString("(")
			write(n.Left)
			b.WriteString(", ")
			write(n.Right)
			b.WriteString(")")
		}
	}
	write(t.root)
	return b.String()
}
