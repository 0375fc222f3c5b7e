// Package tree defines the Lossless Semantic Tree: a typed syntax tree
// that records every byte of the original formatting, so printing an
// unmodified tree reproduces its source exactly.
package tree

import (
	"io/fs"
	"time"

	"github.com/google/uuid"
)

// Node carries the state common to every LST node: a stable identity,
// the formatting captured before the node's first token, and tool
// annotations.
type Node struct {
	ID      string
	Prefix  Space
	Markers Markers
}

// NewNode creates node state with a fresh identity and the given prefix.
func NewNode(prefix Space) Node {
	return Node{ID: uuid.NewString(), Prefix: prefix, Markers: Markers{}}
}

func (n *Node) base() *Node { return n }

// Tree is the closed set of LST node variants. Only types in this
// package implement it.
type Tree interface {
	base() *Node
}

// IDOf returns the stable identity of any node.
func IDOf(t Tree) string { return t.base().ID }

// PrefixOf returns the formatting captured before the node.
func PrefixOf(t Tree) Space { return t.base().Prefix }

// MarkersOf returns the node's marker set.
func MarkersOf(t Tree) Markers { return t.base().Markers }

// FileAttributes are file-system facts passed through the parser
// unchanged, for downstream tooling.
type FileAttributes struct {
	Size         int64
	Mode         fs.FileMode
	LastModified time.Time
}

// Identifier is a simple name: a local, a method name, or a constant.
type Identifier struct {
	Node
	Name string
}

// Literal is a scalar value written directly in source. Source holds the
// exact text of the literal; Value its interpreted form.
type Literal struct {
	Node
	Value  any
	Source string
}

// Empty stands in for an absent element inside delimited lists, such as
// the gap between the parentheses of a zero-argument call. Printing it
// emits only its prefix.
type Empty struct {
	Node
}

// MethodCall is a call with an optional receiver and a delimited
// argument list. Parentheses and argument separators are not nodes;
// their placement is implied by the container's padding, and elided
// parentheses are recorded with an OmitParentheses marker on the
// argument container (or on the call itself when there is no argument
// list at all).
type MethodCall struct {
	Node
	Receiver  *RightPadded[Tree] // padded up to the dot; nil when absent
	Name      Identifier
	Arguments Container[Tree]
}

// Binary is an infix expression. Operator keeps the operator's source
// text together with the space that preceded it; the node prefix
// carries the expression's leading formatting.
type Binary struct {
	Node
	Left     Tree
	Operator LeftPadded[string]
	Right    Tree
}

// Assignment binds Value to Target. The padding before Value is the
// space that preceded the equals sign.
type Assignment struct {
	Node
	Target Tree
	Value  LeftPadded[Tree]
}

// CompilationUnit is the root of one parsed source file. EOF captures
// trailing formatting that no statement owns.
type CompilationUnit struct {
	Node
	SourcePath       string
	FileAttributes   *FileAttributes
	Charset          string
	CharsetBomMarked bool
	CommentSyntax    CommentSyntax
	Statements       []Tree
	EOF              Space
}

// clone makes a shallow copy of a node so edits never touch subtrees
// shared with an earlier version of the tree.
func clone(t Tree) Tree {
	switch n := t.(type) {
	case *Identifier:
		c := *n
		return &c
	case *Literal:
		c := *n
		return &c
	case *Empty:
		c := *n
		return &c
	case *MethodCall:
		c := *n
		return &c
	case *Binary:
		c := *n
		return &c
	case *Assignment:
		c := *n
		return &c
	case *CompilationUnit:
		c := *n
		return &c
	}
	return t
}

// WithPrefix returns a copy of t with its leading formatting replaced.
// The original node is untouched.
func WithPrefix(t Tree, prefix Space) Tree {
	c := clone(t)
	c.base().Prefix = prefix
	return c
}

// AddMarker returns a copy of t with the marker attached.
func AddMarker(t Tree, m Marker) Tree {
	c := clone(t)
	c.base().Markers = c.base().Markers.Add(m)
	return c
}
