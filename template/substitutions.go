package template

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oxhq/regraft/tree"
)

// Substitutions binds concrete argument values to a template's
// placeholders in declaration order, producing concrete source text. A
// Substitutions is per-application and transient; it performs no
// parsing itself.
type Substitutions struct {
	code       string
	parameters []any
}

// NewSubstitutions pairs template code with the values to bind.
func NewSubstitutions(code string, parameters []any) Substitutions {
	return Substitutions{code: code, parameters: parameters}
}

// Substitute replaces each placeholder occurrence, left to right, with
// the textual rendering of the corresponding argument.
func (s Substitutions) Substitute() (string, error) {
	return s.replaceEach(func(i int) (string, error) {
		if i >= len(s.parameters) {
			return "", &ArityError{Required: strings.Count(s.code, PlaceholderMarker), Provided: len(s.parameters)}
		}
		return renderParameter(s.parameters[i])
	})
}

// SubstituteSentinels replaces each placeholder with an indexed sentinel
// call so the template parses as a pattern whose wildcard positions are
// recoverable by index.
func (s Substitutions) SubstituteSentinels() string {
	out, _ := s.replaceEach(func(i int) (string, error) {
		return fmt.Sprintf("%s(%d)", paramStubName, i), nil
	})
	return out
}

func (s Substitutions) replaceEach(render func(int) (string, error)) (string, error) {
	var b strings.Builder
	rest := s.code
	for i := 0; ; i++ {
		open := strings.Index(rest, PlaceholderMarker)
		if open < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		closing := strings.Index(rest[open:], "}")
		if closing < 0 {
			return "", fmt.Errorf("unclosed placeholder at offset %d", open)
		}
		rendered, err := render(i)
		if err != nil {
			return "", err
		}
		b.WriteString(rest[:open])
		b.WriteString(rendered)
		rest = rest[open+closing+1:]
	}
}

// renderParameter turns an argument value into source text: a parsed
// tree fragment prints with its own formatting (minus its leading
// prefix, which belongs to its old context), a string is inserted
// verbatim, and primitive values render in their canonical literal
// syntax.
func renderParameter(p any) (string, error) {
	switch v := p.(type) {
	case tree.Tree:
		return tree.Print(tree.WithPrefix(v, tree.EmptySpace)), nil
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case nil:
		return "nil", nil
	}
	return "", fmt.Errorf("unsupported template parameter type %T", p)
}
