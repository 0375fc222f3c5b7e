package parse

import "fmt"

// UnsupportedNodeError is returned when the foreign tree contains a
// node kind with no registered conversion. Ingestion aborts rather than
// emitting a lossy placeholder, because round-trip fidelity is the
// component's core guarantee.
type UnsupportedNodeError struct {
	Kind   string
	Line   int
	Column int
}

func (e *UnsupportedNodeError) Error() string {
	return fmt.Sprintf("node type %q not yet implemented (line %d, column %d)", e.Kind, e.Line, e.Column)
}
