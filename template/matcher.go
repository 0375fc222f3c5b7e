package template

import (
	"github.com/oxhq/regraft/tree"
)

// Matcher aligns a compiled template's tree against the subtree at a
// cursor, treating placeholder positions as wildcards and requiring
// semantic equivalence everywhere else. Matchers are per-cursor and
// independent; state is never shared across Find calls on different
// matchers.
type Matcher struct {
	template   *Template
	cursor     *tree.Cursor
	parameters []tree.Tree
}

// Matcher creates a matcher over the subtree at cursor.
func (t *Template) Matcher(cursor *tree.Cursor) *Matcher {
	return &Matcher{template: t, cursor: cursor}
}

// Matches reports whether the subtree at cursor matches the template.
func (t *Template) Matches(cursor *tree.Cursor) bool {
	return t.Matcher(cursor).Find()
}

// Find attempts the alignment. On success the subtrees bound at
// placeholder positions are retrievable through Parameter.
func (m *Matcher) Find() bool {
	if m.cursor == nil {
		return false
	}
	candidate, ok := m.cursor.Value().(tree.Tree)
	if !ok {
		return false
	}
	pattern, err := m.template.compiledPattern(m.cursor)
	if err != nil {
		return false
	}

	bound := make([]tree.Tree, m.template.parameterCount)
	comparator := tree.Comparator{
		IsWildcard: func(p tree.Tree) bool {
			_, ok := placeholderIndex(p)
			return ok
		},
		Bind: func(p, c tree.Tree) {
			if i, ok := placeholderIndex(p); ok && i < len(bound) {
				bound[i] = c
			}
		},
	}
	if !comparator.Equal(pattern, candidate) {
		return false
	}
	m.parameters = bound
	return true
}

// Parameter returns the subtree bound to the i-th placeholder by the
// last successful Find.
func (m *Matcher) Parameter(i int) tree.Tree {
	if i < 0 || i >= len(m.parameters) {
		return nil
	}
	return m.parameters[i]
}

// placeholderIndex recognizes the sentinel calls SubstituteSentinels
// planted at placeholder positions and recovers their declaration index.
func placeholderIndex(t tree.Tree) (int, bool) {
	call, ok := t.(*tree.MethodCall)
	if !ok || call.Receiver != nil || call.Name.Name != paramStubName {
		return 0, false
	}
	if len(call.Arguments.Elements) != 1 {
		return 0, false
	}
	lit, ok := call.Arguments.Elements[0].Element.(*tree.Literal)
	if !ok {
		return 0, false
	}
	index, ok := lit.Value.(int64)
	if !ok {
		return 0, false
	}
	return int(index), true
}
