package template

import (
	"context"
	"fmt"
	"strings"

	"github.com/oxhq/regraft/parse"
	"github.com/oxhq/regraft/tree"
)

// paramStubName and memberStubName are the two injected helper
// declarations. They let a snippet that references an unknown-typed
// parameter or a member of the surrounding scope parse standalone; the
// declarations are stripped from the parsed result.
const (
	paramStubName  = "__p__"
	memberStubName = "__m__"
)

// templateParser is the sub-parser a compiled template owns: a clone of
// the host language parser augmented with the stub declarations, any
// declared requires, and, for context-sensitive templates, the symbols
// visible at the insertion coordinate.
type templateParser struct {
	config           parse.LanguageConfig
	contextSensitive bool
	requires         []string
	onBeforeParse    func(string)
}

// parseStatements parses substituted template text through the same
// ingestion pipeline used for whole files, then extracts the snippet's
// own statements from behind the prelude.
func (tp *templateParser) parseStatements(ctx context.Context, text string, scope *tree.Cursor) ([]tree.Tree, error) {
	var prelude strings.Builder
	for _, name := range tp.requires {
		prelude.WriteString(fmt.Sprintf("require %q\n", name))
	}
	prelude.WriteString(paramStubName + " = nil\n")
	prelude.WriteString(memberStubName + " = nil\n")

	contextDecls := 0
	if tp.contextSensitive && scope != nil {
		for _, name := range visibleNames(scope) {
			prelude.WriteString(name + " = nil\n")
			contextDecls++
		}
	}

	doc := prelude.String() + text
	if tp.onBeforeParse != nil {
		tp.onBeforeParse(doc)
	}

	unit, err := parse.NewParser(tp.config).Parse(ctx, "template."+tp.config.Language(), []byte(doc), nil)
	if err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}

	preludeCount := len(tp.requires) + 2 + contextDecls
	if len(unit.Statements) <= preludeCount {
		return nil, &ScopeError{Reason: "template produced no nodes"}
	}
	statements := unit.Statements[preludeCount:]
	// the first statement's prefix is prelude leftovers, not template text
	statements[0] = tree.WithPrefix(statements[0], tree.EmptySpace)
	return statements, nil
}

// visibleNames walks up from the coordinate collecting names assigned
// in enclosing scopes, outermost last.
func visibleNames(scope *tree.Cursor) []string {
	seen := map[string]bool{}
	var names []string
	for c := scope; c != nil; c = c.Parent() {
		unit, ok := c.Value().(*tree.CompilationUnit)
		if !ok {
			continue
		}
		for _, stmt := range unit.Statements {
			assign, ok := stmt.(*tree.Assignment)
			if !ok {
				continue
			}
			ident, ok := assign.Target.(*tree.Identifier)
			if !ok || seen[ident.Name] {
				continue
			}
			seen[ident.Name] = true
			names = append(names, ident.Name)
		}
	}
	return names
}
