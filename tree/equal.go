package tree

// Comparator reports semantic equivalence between two subtrees:
// equivalence up to formatting, identity, and markers. A pattern node
// for which IsWildcard returns true matches any candidate subtree; the
// pair is handed to Bind so callers can recover what the wildcard
// matched.
type Comparator struct {
	IsWildcard func(pattern Tree) bool
	Bind       func(pattern, candidate Tree)
}

// SemanticallyEqual reports equivalence with no wildcard positions.
func SemanticallyEqual(a, b Tree) bool {
	return Comparator{}.Equal(a, b)
}

// Equal aligns pattern against candidate.
func (c Comparator) Equal(pattern, candidate Tree) bool {
	if pattern == nil || candidate == nil {
		return pattern == nil && candidate == nil
	}
	if c.IsWildcard != nil && c.IsWildcard(pattern) {
		if c.Bind != nil {
			c.Bind(pattern, candidate)
		}
		return true
	}
	switch p := pattern.(type) {
	case *Identifier:
		q, ok := candidate.(*Identifier)
		return ok && p.Name == q.Name
	case *Literal:
		q, ok := candidate.(*Literal)
		return ok && p.Value == q.Value
	case *Empty:
		_, ok := candidate.(*Empty)
		return ok
	case *MethodCall:
		q, ok := candidate.(*MethodCall)
		if !ok || p.Name.Name != q.Name.Name {
			return false
		}
		if (p.Receiver == nil) != (q.Receiver == nil) {
			return false
		}
		if p.Receiver != nil && !c.Equal(p.Receiver.Element, q.Receiver.Element) {
			return false
		}
		if len(p.Arguments.Elements) != len(q.Arguments.Elements) {
			return false
		}
		for i := range p.Arguments.Elements {
			if !c.Equal(p.Arguments.Elements[i].Element, q.Arguments.Elements[i].Element) {
				return false
			}
		}
		return true
	case *Binary:
		q, ok := candidate.(*Binary)
		return ok && p.Operator.Element == q.Operator.Element &&
			c.Equal(p.Left, q.Left) && c.Equal(p.Right, q.Right)
	case *Assignment:
		q, ok := candidate.(*Assignment)
		return ok && c.Equal(p.Target, q.Target) && c.Equal(p.Value.Element, q.Value.Element)
	case *CompilationUnit:
		q, ok := candidate.(*CompilationUnit)
		if !ok || len(p.Statements) != len(q.Statements) {
			return false
		}
		for i := range p.Statements {
			if !c.Equal(p.Statements[i], q.Statements[i]) {
				return false
			}
		}
		return true
	}
	return false
}
