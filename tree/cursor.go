package tree

import "fmt"

// Cursor is a position within a tree: a value plus the chain of parents
// it was reached through. Cursors are cheap, immutable, and safe to keep
// across tree edits (they reference nodes, not offsets).
type Cursor struct {
	parent *Cursor
	value  any
}

// NewCursor creates a cursor over value with the given parent, which may
// be nil for a root cursor.
func NewCursor(parent *Cursor, value any) *Cursor {
	return &Cursor{parent: parent, value: value}
}

// Value returns the value at this cursor position.
func (c *Cursor) Value() any { return c.value }

// Parent returns the enclosing cursor, or nil at the root.
func (c *Cursor) Parent() *Cursor { return c.parent }

// ParentOrError returns the enclosing cursor or an error at the root.
func (c *Cursor) ParentOrError() (*Cursor, error) {
	if c.parent == nil {
		return nil, fmt.Errorf("cursor at %T has no parent", c.value)
	}
	return c.parent, nil
}

// Root walks up to the outermost cursor.
func (c *Cursor) Root() *Cursor {
	r := c
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Walk visits every node in the subtree rooted at t in source order,
// passing a cursor whose parent chain leads back to parent. Returning
// false from visit stops the traversal.
func Walk(t Tree, parent *Cursor, visit func(*Cursor) bool) bool {
	c := NewCursor(parent, t)
	if !visit(c) {
		return false
	}
	for _, child := range childrenOf(t) {
		if !Walk(child, c, visit) {
			return false
		}
	}
	return true
}

// childrenOf lists a node's structural children in source order.
func childrenOf(t Tree) []Tree {
	switch n := t.(type) {
	case *MethodCall:
		var kids []Tree
		if n.Receiver != nil {
			kids = append(kids, n.Receiver.Element)
		}
		for _, arg := range n.Arguments.Elements {
			kids = append(kids, arg.Element)
		}
		return kids
	case *Binary:
		return []Tree{n.Left, n.Right}
	case *Assignment:
		return []Tree{n.Target, n.Value.Element}
	case *CompilationUnit:
		return n.Statements
	}
	return nil
}
