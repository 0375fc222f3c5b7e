package template

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/regraft/parse"
	"github.com/oxhq/regraft/tree"
)

func parseUnit(t *testing.T, source string) *tree.CompilationUnit {
	t.Helper()
	unit, err := parse.NewParser(parse.RubyConfig{}).Parse(context.Background(), "test.rb", []byte(source), nil)
	require.NoError(t, err)
	return unit
}

func rootCursor(unit *tree.CompilationUnit) *tree.Cursor {
	return tree.NewCursor(nil, tree.Tree(unit))
}

// cursorAt walks to the first node satisfying pred.
func cursorAt(unit *tree.CompilationUnit, pred func(tree.Tree) bool) *tree.Cursor {
	var found *tree.Cursor
	tree.Walk(unit, nil, func(c *tree.Cursor) bool {
		if t, ok := c.Value().(tree.Tree); ok && pred(t) {
			found = c
			return false
		}
		return true
	})
	return found
}

func TestBuilderTrimsCode(t *testing.T) {
	tmpl, err := NewBuilder("  puts(1)\n").Build()
	require.NoError(t, err)
	assert.Equal(t, "puts(1)", tmpl.Code())
}

func TestParameterCount(t *testing.T) {
	tests := []struct {
		code  string
		count int
	}{
		{"puts(1)", 0},
		{"puts(#{})", 1},
		{"add(#{}, #{})", 2},
		{"#{}.send(#{}, #{})", 3},
	}
	for _, tt := range tests {
		tmpl, err := NewBuilder(tt.code).Build()
		require.NoError(t, err)
		assert.Equal(t, tt.count, tmpl.ParameterCount(), "code %q", tt.code)
	}
}

func TestBuilderRequiresValidation(t *testing.T) {
	tests := []struct {
		name    string
		require string
		reason  string
	}{
		{"blank", "   ", "must not be blank"},
		{"keyword prefix", "require json", "without a \"require \" prefix"},
		{"semicolon suffix", "json;", "terminator"},
		{"newline suffix", "json\n", "terminator"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBuilder("puts(1)").Requires(tt.require).Build()
			require.Error(t, err)
			var reqErr *RequireError
			require.ErrorAs(t, err, &reqErr)
			assert.Contains(t, err.Error(), tt.reason)
		})
	}
}

func TestBuilderRejectsUnclosedPlaceholder(t *testing.T) {
	_, err := NewBuilder("puts(#{").Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unclosed placeholder")
}

func TestBuilderValidRequire(t *testing.T) {
	_, err := NewBuilder("puts(1)").Requires("json", "set").Build()
	assert.NoError(t, err)
}

func TestApplyArityMismatch(t *testing.T) {
	unit := parseUnit(t, "puts(1)")
	tmpl, err := NewBuilder("log(#{})").Build()
	require.NoError(t, err)

	_, err = tmpl.Apply(rootCursor(unit), tree.Replace(unit.Statements[0]))
	var arity *ArityError
	require.ErrorAs(t, err, &arity)
	assert.Equal(t, 1, arity.Required)
	assert.Equal(t, 0, arity.Provided)
	assert.Contains(t, err.Error(), "requires 1 parameters; 0 provided")
}

func TestApplyNilScope(t *testing.T) {
	tmpl, err := NewBuilder("puts(1)").Build()
	require.NoError(t, err)
	_, err = tmpl.Apply(nil, tree.Coordinates{})
	var scopeErr *ScopeError
	assert.ErrorAs(t, err, &scopeErr)
}

func TestApplyNonTreeScope(t *testing.T) {
	tmpl, err := NewBuilder("puts(1)").Build()
	require.NoError(t, err)
	_, err = tmpl.Apply(tree.NewCursor(nil, "not a tree"), tree.Coordinates{})
	var scopeErr *ScopeError
	assert.ErrorAs(t, err, &scopeErr)
}

func TestApplyUnknownTarget(t *testing.T) {
	unit := parseUnit(t, "puts(1)")
	tmpl, err := NewBuilder("puts(2)").Build()
	require.NoError(t, err)
	_, err = tmpl.Apply(rootCursor(unit), tree.Coordinates{Target: "missing-id", Mode: tree.ModeReplace})
	var scopeErr *ScopeError
	require.ErrorAs(t, err, &scopeErr)
	assert.Contains(t, err.Error(), "not present in scope")
}

func TestDoAfterVariableSubstitutionHook(t *testing.T) {
	var seen string
	tmpl, err := NewBuilder("log(#{})").DoAfterVariableSubstitution(func(s string) { seen = s }).Build()
	require.NoError(t, err)

	unit := parseUnit(t, "puts(1)")
	_, err = tmpl.Apply(rootCursor(unit), tree.Replace(unit.Statements[0]), "x")
	require.NoError(t, err)
	assert.Equal(t, "log(x)", seen)
}

func TestDoBeforeParseTemplateIncludesPrelude(t *testing.T) {
	var doc string
	tmpl, err := NewBuilder("parse(data)").
		Requires("json").
		DoBeforeParseTemplate(func(s string) { doc = s }).
		Build()
	require.NoError(t, err)

	unit := parseUnit(t, "puts(1)")
	_, err = tmpl.Apply(rootCursor(unit), tree.Replace(unit.Statements[0]))
	require.NoError(t, err)
	assert.Contains(t, doc, `require "json"`)
	assert.Contains(t, doc, "__p__ = nil")
	assert.Contains(t, doc, "__m__ = nil")
	assert.True(t, strings.HasSuffix(doc, "parse(data)"))
}

func TestContextSensitivePreludeDeclaresVisibleNames(t *testing.T) {
	var doc string
	tmpl, err := NewBuilder("total = subtotal + 1").
		ContextSensitive().
		DoBeforeParseTemplate(func(s string) { doc = s }).
		Build()
	require.NoError(t, err)

	unit := parseUnit(t, "subtotal = 9\nputs(subtotal)\n")
	out, err := tmpl.Apply(rootCursor(unit), tree.InsertAfter(unit.Statements[1]))
	require.NoError(t, err)
	assert.Contains(t, doc, "subtotal = nil")
	assert.Equal(t, "subtotal = 9\nputs(subtotal)\ntotal = subtotal + 1\n", tree.Print(out))
}

func TestApplyOneShotHelper(t *testing.T) {
	unit := parseUnit(t, "puts(1)\n")
	out, err := Apply("puts(2)", rootCursor(unit), tree.Replace(unit.Statements[0]))
	require.NoError(t, err)
	assert.Equal(t, "puts(2)\n", tree.Print(out))
}

func TestMatchesOneShotHelper(t *testing.T) {
	unit := parseUnit(t, "puts(1)")
	c := cursorAt(unit, func(t tree.Tree) bool { _, ok := t.(*tree.MethodCall); return ok })
	ok, err := Matches("puts(#{})", c)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Matches("warn(#{})", c)
	require.NoError(t, err)
	assert.False(t, ok)
}
