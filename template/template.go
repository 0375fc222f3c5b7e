// Package template compiles source snippets containing placeholder
// markers into reusable patterns that can be spliced into an existing
// lossless tree at a coordinate, or matched against an existing subtree
// to recover the values bound at placeholder positions.
package template

import (
	"context"
	"strings"
	"sync"

	"github.com/oxhq/regraft/parse"
	"github.com/oxhq/regraft/tree"
)

// PlaceholderMarker is the sentinel substring that opens a placeholder
// in template code. The placeholder count of a template is the number of
// occurrences of this marker.
const PlaceholderMarker = "#{"

// Template is an immutable compiled snippet. It is safe to cache and
// share across goroutines; every Apply and Matcher call works on
// per-call state.
type Template struct {
	code                string
	parameterCount      int
	onAfterSubstitution func(string)
	parser              *templateParser

	patternOnce sync.Once
	pattern     tree.Tree
	patternErr  error
}

// Code returns the template's normalized source text.
func (t *Template) Code() string { return t.code }

// ParameterCount returns the number of placeholders in the template.
func (t *Template) ParameterCount() int { return t.parameterCount }

// Builder configures a template before compilation.
type Builder struct {
	code                string
	requires            []string
	contextSensitive    bool
	config              parse.LanguageConfig
	onAfterSubstitution func(string)
	onBeforeParse       func(string)
}

// NewBuilder starts a builder from template code. Leading and trailing
// whitespace is not part of the pattern and is trimmed.
func NewBuilder(code string) *Builder {
	return &Builder{
		code:                strings.TrimSpace(code),
		config:              parse.RubyConfig{},
		onAfterSubstitution: func(string) {},
		onBeforeParse:       func(string) {},
	}
}

// ContextSensitive marks the template as needing the symbols visible at
// the insertion coordinate, not just a clean compilation unit.
func (b *Builder) ContextSensitive() *Builder {
	b.contextSensitive = true
	return b
}

// Requires declares libraries the template's sub-parser makes visible,
// named the way they would appear inside a require call, without the
// require keyword or any terminator.
func (b *Builder) Requires(names ...string) *Builder {
	b.requires = append(b.requires, names...)
	return b
}

// Language overrides the language configuration the template's
// sub-parser uses.
func (b *Builder) Language(config parse.LanguageConfig) *Builder {
	b.config = config
	return b
}

// DoAfterVariableSubstitution registers a hook fired with the
// substituted source text before it is parsed. For introspection only.
func (b *Builder) DoAfterVariableSubstitution(fn func(string)) *Builder {
	b.onAfterSubstitution = fn
	return b
}

// DoBeforeParseTemplate registers a hook fired with the full document
// handed to the sub-parser, stubs and requires included.
func (b *Builder) DoBeforeParseTemplate(fn func(string)) *Builder {
	b.onBeforeParse = fn
	return b
}

// Build compiles the template. Malformed require names fail here, at
// configuration time.
func (b *Builder) Build() (*Template, error) {
	for _, name := range b.requires {
		if err := validateRequire(name); err != nil {
			return nil, err
		}
	}
	if _, err := NewSubstitutions(b.code, nil).replaceEach(func(int) (string, error) { return "", nil }); err != nil {
		return nil, err
	}
	return &Template{
		code:                b.code,
		parameterCount:      strings.Count(b.code, PlaceholderMarker),
		onAfterSubstitution: b.onAfterSubstitution,
		parser: &templateParser{
			config:           b.config,
			contextSensitive: b.contextSensitive,
			requires:         b.requires,
			onBeforeParse:    b.onBeforeParse,
		},
	}, nil
}

func validateRequire(name string) error {
	if strings.TrimSpace(name) == "" {
		return &RequireError{Name: name, Reason: "must not be blank"}
	}
	if strings.HasPrefix(name, "require ") {
		return &RequireError{Name: name, Reason: "expressed as a bare library name, without a \"require \" prefix"}
	}
	if strings.HasSuffix(name, ";") || strings.HasSuffix(name, "\n") {
		return &RequireError{Name: name, Reason: "must not include a suffixed terminator"}
	}
	return nil
}

// Apply is a one-shot helper: compile code and apply it in a single
// call. Callers applying the same template repeatedly should Build once
// and reuse the compiled Template.
func Apply(code string, scope *tree.Cursor, coords tree.Coordinates, parameters ...any) (tree.Tree, error) {
	tmpl, err := NewBuilder(code).Build()
	if err != nil {
		return nil, err
	}
	return tmpl.Apply(scope, coords, parameters...)
}

// Matches is a one-shot helper: compile code and test it against the
// subtree at cursor.
func Matches(code string, cursor *tree.Cursor) (bool, error) {
	tmpl, err := NewBuilder(code).Build()
	if err != nil {
		return false, err
	}
	return tmpl.Matches(cursor), nil
}

// compiledPattern parses the template with sentinel wildcards standing
// in for its placeholders. Context-free patterns are compiled once and
// cached on the immutable template.
func (t *Template) compiledPattern(scope *tree.Cursor) (tree.Tree, error) {
	parseIt := func() (tree.Tree, error) {
		text := NewSubstitutions(t.code, nil).SubstituteSentinels()
		statements, err := t.parser.parseStatements(context.Background(), text, scope)
		if err != nil {
			return nil, err
		}
		return statements[0], nil
	}
	if t.parser.contextSensitive {
		return parseIt()
	}
	t.patternOnce.Do(func() {
		t.pattern, t.patternErr = parseIt()
	})
	return t.pattern, t.patternErr
}
