package template

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/oxhq/regraft/tree"
)

// Apply substitutes parameters into the template, parses the result in
// the lexical context implied by scope, and splices the parsed node(s)
// into the host tree at coords. A new host tree is returned; siblings
// and ancestors outside the splice point are structurally reused, never
// recopied, and the original tree is not mutated.
func (t *Template) Apply(scope *tree.Cursor, coords tree.Coordinates, parameters ...any) (tree.Tree, error) {
	if scope == nil {
		return nil, &ScopeError{Reason: "scope must point to a tree node"}
	}
	host, ok := scope.Value().(tree.Tree)
	if !ok {
		return nil, &ScopeError{Reason: fmt.Sprintf("scope must point to a tree node, not %T", scope.Value())}
	}
	if len(parameters) != t.parameterCount {
		return nil, &ArityError{Required: t.parameterCount, Provided: len(parameters)}
	}

	substituted, err := NewSubstitutions(t.code, parameters).Substitute()
	if err != nil {
		return nil, err
	}
	t.onAfterSubstitution(substituted)

	replacement, err := t.parser.parseStatements(context.Background(), substituted, scope)
	if err != nil {
		return nil, err
	}

	out, found, err := spliceTree(host, coords, replacement)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &ScopeError{Reason: fmt.Sprintf("coordinate targets a node not present in scope (%s %s)", coords.Mode, coords.Target)}
	}
	return out, nil
}

// spliceTree rebuilds the path from t down to the coordinate's target,
// sharing every untouched subtree with the input.
func spliceTree(t tree.Tree, coords tree.Coordinates, repl []tree.Tree) (tree.Tree, bool, error) {
	if tree.IDOf(t) == coords.Target {
		switch coords.Mode {
		case tree.ModeReplace:
			if len(repl) != 1 {
				return nil, false, &ScopeError{Reason: fmt.Sprintf("replace coordinate requires exactly one node; template produced %d", len(repl))}
			}
			return tree.WithPrefix(repl[0], tree.PrefixOf(t)), true, nil
		case tree.ModeFirstChild, tree.ModeLastChild:
			return spliceChildList(t, coords.Mode, repl)
		default:
			return nil, false, &ScopeError{Reason: fmt.Sprintf("cannot insert %s the root of the scope", coords.Mode)}
		}
	}

	switch n := t.(type) {
	case *tree.CompilationUnit:
		statements, found, err := spliceStatements(n.Statements, coords, repl)
		if err != nil || !found {
			return t, found, err
		}
		c := *n
		c.Statements = statements
		return &c, true, nil
	case *tree.MethodCall:
		if n.Receiver != nil {
			receiver, found, err := spliceTree(n.Receiver.Element, coords, repl)
			if err != nil {
				return nil, false, err
			}
			if found {
				c := *n
				padded := *n.Receiver
				padded.Element = receiver
				c.Receiver = &padded
				return &c, true, nil
			}
		}
		elements, found, err := spliceArguments(n.Arguments.Elements, coords, repl)
		if err != nil || !found {
			return t, found, err
		}
		c := *n
		c.Arguments.Elements = elements
		return &c, true, nil
	case *tree.Binary:
		left, found, err := spliceTree(n.Left, coords, repl)
		if err != nil {
			return nil, false, err
		}
		if found {
			c := *n
			c.Left = left
			return &c, true, nil
		}
		right, found, err := spliceTree(n.Right, coords, repl)
		if err != nil || !found {
			return t, found, err
		}
		c := *n
		c.Right = right
		return &c, true, nil
	case *tree.Assignment:
		target, found, err := spliceTree(n.Target, coords, repl)
		if err != nil {
			return nil, false, err
		}
		if found {
			c := *n
			c.Target = target
			return &c, true, nil
		}
		value, found, err := spliceTree(n.Value.Element, coords, repl)
		if err != nil || !found {
			return t, found, err
		}
		c := *n
		c.Value.Element = value
		return &c, true, nil
	}
	return t, false, nil
}

// spliceChildList handles first-child and last-child coordinates, whose
// target is the node owning the list.
func spliceChildList(t tree.Tree, mode tree.InsertionMode, repl []tree.Tree) (tree.Tree, bool, error) {
	switch n := t.(type) {
	case *tree.CompilationUnit:
		c := *n
		if mode == tree.ModeFirstChild {
			statements := n.Statements
			formatted := formatStatements(repl, nil, true)
			if len(statements) > 0 {
				// the new first statement takes over the old one's prefix
				formatted[0] = tree.WithPrefix(formatted[0], tree.PrefixOf(statements[0]))
				statements = slices.Clone(statements)
				statements[0] = tree.WithPrefix(statements[0], newlinePrefix(statements[0]))
			}
			c.Statements = slices.Concat(formatted, statements)
		} else {
			var sibling tree.Tree
			if len(n.Statements) > 0 {
				sibling = n.Statements[len(n.Statements)-1]
			}
			c.Statements = slices.Concat(n.Statements, formatStatements(repl, sibling, len(n.Statements) == 0))
		}
		return &c, true, nil
	case *tree.MethodCall:
		padded := make([]tree.RightPadded[tree.Tree], 0, len(repl))
		for _, r := range repl {
			padded = append(padded, tree.PadRight(r, tree.EmptySpace))
		}
		c := *n
		if mode == tree.ModeFirstChild {
			c.Arguments.Elements = slices.Concat(padded, n.Arguments.Elements)
		} else {
			c.Arguments.Elements = slices.Concat(n.Arguments.Elements, padded)
		}
		return &c, true, nil
	}
	return nil, false, &ScopeError{Reason: fmt.Sprintf("%T has no child list to insert into", t)}
}

// spliceStatements handles sibling insertion and recursion within a
// statement list.
func spliceStatements(statements []tree.Tree, coords tree.Coordinates, repl []tree.Tree) ([]tree.Tree, bool, error) {
	if coords.Mode == tree.ModeBefore || coords.Mode == tree.ModeAfter {
		for i, stmt := range statements {
			if tree.IDOf(stmt) != coords.Target {
				continue
			}
			out := make([]tree.Tree, 0, len(statements)+len(repl))
			if coords.Mode == tree.ModeBefore {
				out = append(out, statements[:i]...)
				// the new first statement takes over the old one's prefix
				formatted := formatStatements(repl, stmt, i == 0)
				if i == 0 {
					formatted[0] = tree.WithPrefix(formatted[0], tree.PrefixOf(stmt))
					stmt = tree.WithPrefix(stmt, newlinePrefix(stmt))
				}
				out = append(out, formatted...)
				out = append(out, stmt)
				out = append(out, statements[i+1:]...)
			} else {
				out = append(out, statements[:i+1]...)
				out = append(out, formatStatements(repl, stmt, false)...)
				out = append(out, statements[i+1:]...)
			}
			return out, true, nil
		}
	}
	for i, stmt := range statements {
		spliced, found, err := spliceTree(stmt, coords, repl)
		if err != nil {
			return nil, false, err
		}
		if found {
			out := slices.Clone(statements)
			out[i] = spliced
			return out, true, nil
		}
	}
	return statements, false, nil
}

// spliceArguments handles sibling insertion and recursion within a
// call's argument list.
func spliceArguments(elements []tree.RightPadded[tree.Tree], coords tree.Coordinates, repl []tree.Tree) ([]tree.RightPadded[tree.Tree], bool, error) {
	if coords.Mode == tree.ModeBefore || coords.Mode == tree.ModeAfter {
		for i, el := range elements {
			if tree.IDOf(el.Element) != coords.Target {
				continue
			}
			padded := make([]tree.RightPadded[tree.Tree], 0, len(repl))
			for _, r := range repl {
				padded = append(padded, tree.PadRight(r, tree.EmptySpace))
			}
			var out []tree.RightPadded[tree.Tree]
			if coords.Mode == tree.ModeBefore {
				out = slices.Concat(elements[:i], padded, elements[i:])
			} else {
				out = slices.Concat(elements[:i+1], padded, elements[i+1:])
			}
			return out, true, nil
		}
	}
	for i, el := range elements {
		spliced, found, err := spliceTree(el.Element, coords, repl)
		if err != nil {
			return nil, false, err
		}
		if found {
			out := slices.Clone(elements)
			out[i].Element = spliced
			return out, true, nil
		}
	}
	return elements, false, nil
}

// formatStatements gives inserted statements a line of their own,
// copying the indentation of the sibling they land next to. Statements
// that already carry a newline keep their own formatting.
func formatStatements(repl []tree.Tree, sibling tree.Tree, first bool) []tree.Tree {
	out := make([]tree.Tree, len(repl))
	for i, r := range repl {
		if (first && i == 0) || strings.Contains(tree.PrefixOf(r).Whitespace, "\n") {
			out[i] = r
			continue
		}
		var indent string
		if sibling != nil {
			indent = indentOf(sibling)
		}
		out[i] = tree.WithPrefix(r, tree.Space{Whitespace: "\n" + indent})
	}
	return out
}

func newlinePrefix(t tree.Tree) tree.Space {
	return tree.Space{Whitespace: "\n" + indentOf(t)}
}

// indentOf extracts the indentation a statement sits at, from the text
// after the last newline of its prefix.
func indentOf(t tree.Tree) string {
	ws := tree.PrefixOf(t).Whitespace
	if i := strings.LastIndexByte(ws, '\n'); i >= 0 {
		return ws[i+1:]
	}
	return ""
}
