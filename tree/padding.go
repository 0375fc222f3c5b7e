package tree

// RightPadded pairs an element with the formatting that followed it, up
// to (but not including) the separator or closing delimiter that came
// next. The separator itself is implied by the element's position in its
// parent, not modeled as a node.
type RightPadded[T Tree] struct {
	Element T
	After   Space
	Markers Markers
}

// PadRight wraps an element with its trailing space.
func PadRight[T Tree](element T, after Space) RightPadded[T] {
	return RightPadded[T]{Element: element, After: after, Markers: Markers{}}
}

// LeftPadded pairs an element with the formatting that preceded the
// symbol introducing it, such as the space before an equals sign or an
// infix operator.
type LeftPadded[T any] struct {
	Before  Space
	Element T
	Markers Markers
}

// PadLeft wraps an element with the space before its introducing symbol.
func PadLeft[T any](before Space, element T) LeftPadded[T] {
	return LeftPadded[T]{Before: before, Element: element, Markers: Markers{}}
}

// Container holds a delimited, ordered element list: the space before
// the opening delimiter plus each element with its own trailing space.
// Inner elements pad up to their separator; the last element pads up to
// the closing delimiter.
type Container[T Tree] struct {
	Before   Space
	Elements []RightPadded[T]
	Markers  Markers
}

// NewContainer builds a container from already-padded elements.
func NewContainer[T Tree](before Space, elements []RightPadded[T]) Container[T] {
	return Container[T]{Before: before, Elements: elements, Markers: Markers{}}
}
