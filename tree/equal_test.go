package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSemanticallyEqualIgnoresFormatting(t *testing.T) {
	assert.True(t, SemanticallyEqual(ident("  ", "foo"), ident("\n\t", "foo")))
	assert.False(t, SemanticallyEqual(ident("", "foo"), ident("", "bar")))
}

func TestSemanticallyEqualIgnoresIdentity(t *testing.T) {
	a := ident("", "x")
	b := ident("", "x")
	assert.NotEqual(t, IDOf(a), IDOf(b))
	assert.True(t, SemanticallyEqual(a, b))
}

func TestSemanticallyEqualLiteralsByValue(t *testing.T) {
	assert.True(t, SemanticallyEqual(
		literal("", int64(1000), "1000"),
		literal(" ", int64(1000), "1_000")))
	assert.False(t, SemanticallyEqual(
		literal("", int64(1), "1"),
		literal("", int64(2), "2")))
}

func TestSemanticallyEqualDifferentKinds(t *testing.T) {
	assert.False(t, SemanticallyEqual(ident("", "x"), literal("", "x", `"x"`)))
}

func TestSemanticallyEqualMethodCalls(t *testing.T) {
	mk := func(name string, arg Tree) *MethodCall {
		return &MethodCall{
			Node: NewNode(EmptySpace),
			Name: Identifier{Node: NewNode(EmptySpace), Name: name},
			Arguments: NewContainer(EmptySpace, []RightPadded[Tree]{
				PadRight(arg, EmptySpace),
			}),
		}
	}
	assert.True(t, SemanticallyEqual(mk("puts", literal("", "a", `"a"`)), mk("puts", literal(" ", "a", `"a"`))))
	assert.False(t, SemanticallyEqual(mk("puts", literal("", "a", `"a"`)), mk("warn", literal("", "a", `"a"`))))
	assert.False(t, SemanticallyEqual(mk("puts", literal("", "a", `"a"`)), mk("puts", literal("", "b", `"b"`))))
}

func TestSemanticallyEqualReceiverPresence(t *testing.T) {
	bare := &MethodCall{
		Node:      NewNode(EmptySpace),
		Name:      Identifier{Node: NewNode(EmptySpace), Name: "freeze"},
		Arguments: NewContainer[Tree](EmptySpace, nil),
	}
	withRecv := &MethodCall{
		Node:      NewNode(EmptySpace),
		Receiver:  padRightPtr(ident("", "obj"), EmptySpace),
		Name:      Identifier{Node: NewNode(EmptySpace), Name: "freeze"},
		Arguments: NewContainer[Tree](EmptySpace, nil),
	}
	assert.False(t, SemanticallyEqual(bare, withRecv))
}

func TestComparatorWildcardBinds(t *testing.T) {
	wildcard := ident("", "__any__")
	pattern := &Binary{
		Node:     NewNode(EmptySpace),
		Left:     wildcard,
		Operator: PadLeft(EmptySpace, "+"),
		Right:    literal("", int64(1), "1"),
	}
	candidate := &Binary{
		Node:     NewNode(EmptySpace),
		Left:     ident("", "total"),
		Operator: PadLeft(Space{Whitespace: " "}, "+"),
		Right:    literal(" ", int64(1), "1"),
	}

	var bound Tree
	c := Comparator{
		IsWildcard: func(p Tree) bool { return p == Tree(wildcard) },
		Bind:       func(p, cand Tree) { bound = cand },
	}
	assert.True(t, c.Equal(pattern, candidate))
	if assert.NotNil(t, bound) {
		assert.Equal(t, "total", bound.(*Identifier).Name)
	}
}

func TestComparatorWildcardOperatorMismatch(t *testing.T) {
	wildcard := ident("", "__any__")
	pattern := &Binary{
		Node:     NewNode(EmptySpace),
		Left:     wildcard,
		Operator: PadLeft(EmptySpace, "+"),
		Right:    literal("", int64(1), "1"),
	}
	candidate := &Binary{
		Node:     NewNode(EmptySpace),
		Left:     ident("", "total"),
		Operator: PadLeft(EmptySpace, "-"),
		Right:    literal("", int64(1), "1"),
	}
	c := Comparator{IsWildcard: func(p Tree) bool { return p == Tree(wildcard) }}
	assert.False(t, c.Equal(pattern, candidate))
}
