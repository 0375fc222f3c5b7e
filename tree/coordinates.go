package tree

// InsertionMode says how template output relates to the coordinate's
// target node.
type InsertionMode int

const (
	// ModeReplace substitutes the target node itself.
	ModeReplace InsertionMode = iota
	// ModeBefore inserts as a preceding sibling within the parent list.
	ModeBefore
	// ModeAfter inserts as a following sibling within the parent list.
	ModeAfter
	// ModeFirstChild inserts at the head of the target's child list.
	ModeFirstChild
	// ModeLastChild inserts at the tail of the target's child list.
	ModeLastChild
)

func (m InsertionMode) String() string {
	switch m {
	case ModeReplace:
		return "replace"
	case ModeBefore:
		return "before"
	case ModeAfter:
		return "after"
	case ModeFirstChild:
		return "first-child"
	case ModeLastChild:
		return "last-child"
	}
	return "unknown"
}

// Coordinates name a splice point: an existing node plus an insertion
// mode. They are consumed at application time and never persisted.
type Coordinates struct {
	Target string // node ID
	Mode   InsertionMode
}

// Replace targets t for replacement.
func Replace(t Tree) Coordinates {
	return Coordinates{Target: IDOf(t), Mode: ModeReplace}
}

// InsertBefore targets the slot preceding t in its parent list.
func InsertBefore(t Tree) Coordinates {
	return Coordinates{Target: IDOf(t), Mode: ModeBefore}
}

// InsertAfter targets the slot following t in its parent list.
func InsertAfter(t Tree) Coordinates {
	return Coordinates{Target: IDOf(t), Mode: ModeAfter}
}

// FirstChildOf targets the head of t's child list.
func FirstChildOf(t Tree) Coordinates {
	return Coordinates{Target: IDOf(t), Mode: ModeFirstChild}
}

// LastChildOf targets the tail of t's child list.
func LastChildOf(t Tree) Coordinates {
	return Coordinates{Target: IDOf(t), Mode: ModeLastChild}
}
