package tree

import "github.com/google/uuid"

// Marker is a tool-visible annotation attached to a node or padding,
// orthogonal to the grammar. Markers record facts the node kinds cannot
// express directly; round-trip correctness never depends on them alone.
type Marker interface {
	Kind() string
}

// Markers maps marker kind to marker instance.
type Markers map[string]Marker

// Add returns a copy of the marker set with m included. The receiver is
// never mutated so marker sets can be shared across reused subtrees.
func (ms Markers) Add(m Marker) Markers {
	next := make(Markers, len(ms)+1)
	for k, v := range ms {
		next[k] = v
	}
	next[m.Kind()] = m
	return next
}

// Has reports whether a marker of the given kind is attached.
func (ms Markers) Has(kind string) bool {
	_, ok := ms[kind]
	return ok
}

// OmitParentheses records that a call's argument parentheses were elided
// in the original source, so printing must elide them too.
type OmitParentheses struct {
	ID string
}

// NewOmitParentheses creates the marker with a fresh identity.
func NewOmitParentheses() OmitParentheses {
	return OmitParentheses{ID: uuid.NewString()}
}

// Kind implements Marker.
func (OmitParentheses) Kind() string { return "OmitParentheses" }
