package queryir

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginhom/hades/internal/metamodel"
	"github.com/ginhom/hades/internal/paging"
)

func TestEmptyTreeIsIdentity(t *testing.T) {
	p := ArgLeaf("lastname", Equal, 0)

	assert.True(t, AndOf(Tree{}, p).Equal(p))
	assert.True(t, AndOf(p, Tree{}).Equal(p))
	assert.True(t, OrOf(Tree{}, p).Equal(p))
	assert.True(t, OrOf(p, Tree{}).Equal(p))
	assert.True(t, AndOf(Tree{}, Tree{}).IsEmpty())
	assert.True(t, NotOf(Tree{}).IsEmpty())
}

func TestWhereIsIdentity(t *testing.T) {
	p := OrOf(ArgLeaf("lastname", Equal, 0), ArgLeaf("firstname", Like, 1))

	assert.True(t, Where(p).Equal(p))
}

func TestDoubleNegationCollapses(t *testing.T) {
	p := AndOf(ValueLeaf("lastname", Equal, "Gierke"), ValueLeaf("age", GreaterThan, 30))

	notNot := NotOf(NotOf(p))

	assert.True(t, notNot.Equal(p))
	assert.Equal(t, p.Len(), notNot.Len(), "collapsed tree holds only reachable nodes")
	assert.False(t, NotOf(p).Equal(p))
}

func TestCombineShiftsRightOperand(t *testing.T) {
	left := OrOf(ArgLeaf("a", Equal, 0), ArgLeaf("b", Equal, 1))
	right := NotOf(AndOf(ArgLeaf("c", Equal, 2), ArgLeaf("d", IsNull, 0)))

	tree := AndOf(left, right)

	assert.Equal(t, "And(Or(Equal(a, ?0), Equal(b, ?1)), Not(And(Equal(c, ?2), IsNull(d))))", tree.String())
	assert.Equal(t, 3, tree.ArgCount())
}

func TestLeavesInLeftToRightOrder(t *testing.T) {
	tree := OrOf(AndOf(ArgLeaf("a", Equal, 0), ArgLeaf("b", Like, 1)), ArgLeaf("c", NotEqual, 2))

	leaves := tree.Leaves()
	require.Len(t, leaves, 3)
	assert.Equal(t, "a", leaves[0].Property)
	assert.Equal(t, "b", leaves[1].Property)
	assert.Equal(t, "c", leaves[2].Property)
}

func TestEqualIgnoresArenaLayout(t *testing.T) {
	a := ArgLeaf("a", Equal, 0)
	b := ArgLeaf("b", Equal, 1)

	direct := AndOf(a, b)
	viaSubtree := NotOf(NotOf(AndOf(a, b)))

	assert.True(t, direct.Equal(viaSubtree))
	assert.False(t, direct.Equal(AndOf(b, a)))
	assert.False(t, direct.Equal(OrOf(a, b)))
	assert.False(t, ValueLeaf("a", Equal, "x").Equal(ValueLeaf("a", Equal, "y")))
}

func TestNullaryLeavesDropOperands(t *testing.T) {
	assert.Equal(t, NoArg, ArgLeaf("a", IsNull, 3).Node(0).Arg)
	assert.Nil(t, ValueLeaf("a", IsTrue, "ignored").Node(0).Value)
	assert.Equal(t, 0, ArgLeaf("a", IsNotNull, 0).ArgCount())
}

func TestTreesAreImmutable(t *testing.T) {
	a := ArgLeaf("a", Equal, 0)
	b := ArgLeaf("b", Equal, 1)
	ab := AndOf(a, b)
	before := ab.String()

	_ = OrOf(ab, NotOf(ab))
	_ = AndOf(ab, ArgLeaf("c", Equal, 2))

	assert.Equal(t, before, ab.String())
	assert.Equal(t, 1, a.Len())
}

func TestConcurrentCombination(t *testing.T) {
	base := OrOf(ArgLeaf("a", Equal, 0), ArgLeaf("b", Equal, 1))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			combined := AndOf(base, NotOf(base))
			assert.Equal(t, 8, combined.Len())
		}()
	}
	wg.Wait()
}

func TestComparatorArity(t *testing.T) {
	for _, c := range []Comparator{IsNull, IsNotNull, IsTrue, IsFalse} {
		assert.Equal(t, 0, c.Arity(), c.String())
	}
	for _, c := range []Comparator{Equal, NotEqual, Like, NotLike, LessThan, GreaterThanEqual, Containing} {
		assert.Equal(t, 1, c.Arity(), c.String())
	}
	assert.Equal(t, "Comparator(99)", Comparator(99).String())
}

func TestValidate(t *testing.T) {
	user := metamodel.MustEntity("User", "users",
		metamodel.Field("lastname", metamodel.KindString),
		metamodel.Field("age", metamodel.KindInt),
		metamodel.Field("active", metamodel.KindBool),
	)

	ok := Select{
		From:   user,
		Filter: AndOf(ArgLeaf("lastname", Like, 0), ArgLeaf("active", IsTrue, 0)),
		Sort:   paging.MustBy(paging.Descending("age")),
	}
	assert.NoError(t, Validate(ok))
	assert.NoError(t, Validate(Select{From: user}))

	unknown := Select{From: user, Filter: ArgLeaf("nickname", Equal, 0)}
	assert.ErrorIs(t, Validate(unknown), metamodel.ErrUnknownProperty)

	badSort := Select{From: user, Sort: paging.MustBy(paging.Ascending("nickname"))}
	assert.ErrorIs(t, Validate(badSort), metamodel.ErrUnknownProperty)

	badKind := Select{From: user, Filter: OrOf(ArgLeaf("age", Like, 0), ArgLeaf("lastname", IsTrue, 0))}
	err := Validate(badKind)
	assert.ErrorIs(t, err, ErrInvalidPredicate)
	assert.Contains(t, err.Error(), "Like requires a string property")
	assert.Contains(t, err.Error(), "IsTrue requires a bool property")

	assert.ErrorIs(t, Validate(Select{}), ErrInvalidPredicate)
}

func TestParseComparator(t *testing.T) {
	for c := Equal; c <= IsFalse; c++ {
		got, err := ParseComparator(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	_, err := ParseComparator("Between")
	assert.Error(t, err)
}
