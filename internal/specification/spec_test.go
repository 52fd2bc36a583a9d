package specification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpec_FluentChainFoldsLeftToRight(t *testing.T) {
	s := Where(Equal("lastname", "Matthews")).
		Or(Like("firstname", "Dav%")).
		And(Not(IsNull("age")))

	assert.Equal(t,
		`And(Or(Equal(lastname, "Matthews"), Like(firstname, "Dav%")), Not(IsNull(age)))`,
		s.String())
}

func TestSpec_AbsentPredicateIsIdentity(t *testing.T) {
	p := Equal("lastname", "Matthews")

	assert.True(t, All().And(p).Equal(p))
	assert.True(t, p.And(All()).Equal(p))
	assert.True(t, All().Or(p).Equal(p))
	assert.True(t, p.Or(Spec{}).Equal(p))
	assert.True(t, All().IsEmpty())
	assert.True(t, Not(All()).IsEmpty())
}

func TestSpec_WhereIsIdentity(t *testing.T) {
	p := GreaterThan("age", 30)
	assert.True(t, Where(p).Equal(p))
}

func TestSpec_DoubleNegationCollapses(t *testing.T) {
	p := And(Equal("lastname", "a"), LessThan("age", 3))
	assert.True(t, Not(Not(p)).Equal(p))
	assert.False(t, Not(p).Equal(p))
}

func TestSpec_VariadicCombinators(t *testing.T) {
	a, b, c := Equal("a", 1), Equal("b", 2), Equal("c", 3)

	assert.True(t, And(a, b, c).Equal(a.And(b).And(c)))
	assert.True(t, Or(a, b, c).Equal(a.Or(b).Or(c)))
	assert.True(t, And().IsEmpty())
	assert.True(t, Or(Spec{}, a).Equal(a))
}

func TestSpec_OperandsAreNotMutated(t *testing.T) {
	a := Equal("lastname", "a")
	before := a.String()

	_ = a.And(Equal("firstname", "b"))
	_ = a.Not()

	assert.Equal(t, before, a.String())
}

func TestSpec_Leaves(t *testing.T) {
	testCases := []struct {
		spec Spec
		want string
	}{
		{NotEqual("age", 3), "NotEqual(age, 3)"},
		{NotLike("lastname", "x%"), `NotLike(lastname, "x%")`},
		{LessThanEqual("age", 3), "LessThanEqual(age, 3)"},
		{GreaterThanEqual("age", 3), "GreaterThanEqual(age, 3)"},
		{StartingWith("lastname", "Ma"), `StartingWith(lastname, "Ma")`},
		{EndingWith("lastname", "ws"), `EndingWith(lastname, "ws")`},
		{Containing("lastname", "tt"), `Containing(lastname, "tt")`},
		{IsNotNull("age"), "IsNotNull(age)"},
		{IsTrue("active"), "IsTrue(active)"},
		{IsFalse("active"), "IsFalse(active)"},
	}

	for _, tc := range testCases {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.spec.String())
			assert.Equal(t, 0, tc.spec.Tree().ArgCount())
		})
	}
}
