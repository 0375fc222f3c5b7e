package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/regraft/tree"
)

func TestSubstituteNoPlaceholders(t *testing.T) {
	out, err := NewSubstitutions("puts(1)", nil).Substitute()
	require.NoError(t, err)
	assert.Equal(t, "puts(1)", out)
}

func TestSubstitutePrimitives(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		params   []any
		expected string
	}{
		{"string verbatim", "puts(#{})", []any{"balance"}, "puts(balance)"},
		{"int", "retry(#{})", []any{3}, "retry(3)"},
		{"int64", "retry(#{})", []any{int64(3)}, "retry(3)"},
		{"bool", "toggle(#{})", []any{true}, "toggle(true)"},
		{"float", "scale(#{})", []any{2.5}, "scale(2.5)"},
		{"nil", "reset(#{})", []any{nil}, "reset(nil)"},
		{"multiple in order", "add(#{}, #{})", []any{1, 2}, "add(1, 2)"},
		{"named hint ignored", "add(#{first}, #{second})", []any{1, 2}, "add(1, 2)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewSubstitutions(tt.code, tt.params).Substitute()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestSubstituteTreeParameter(t *testing.T) {
	// a captured subtree prints with its own formatting, minus the
	// leading prefix it carried in its old context
	lit := &tree.Literal{Node: tree.NewNode(tree.Space{Whitespace: "   "}), Value: "hi", Source: `"hi"`}
	out, err := NewSubstitutions("log(#{})", []any{tree.Tree(lit)}).Substitute()
	require.NoError(t, err)
	assert.Equal(t, `log("hi")`, out)
}

func TestSubstituteUnsupportedType(t *testing.T) {
	_, err := NewSubstitutions("puts(#{})", []any{struct{}{}}).Substitute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported template parameter type")
}

func TestSubstituteUnclosedPlaceholder(t *testing.T) {
	_, err := NewSubstitutions("puts(#{", []any{1}).Substitute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unclosed placeholder")
}

func TestSubstituteSentinels(t *testing.T) {
	out := NewSubstitutions("#{}.withdraw(#{})", nil).SubstituteSentinels()
	assert.Equal(t, "__p__(0).withdraw(__p__(1))", out)
}

func TestSubstituteSentinelsNoPlaceholders(t *testing.T) {
	out := NewSubstitutions("puts(1)", nil).SubstituteSentinels()
	assert.Equal(t, "puts(1)", out)
}
