package tree

import (
	"fmt"
	"strings"
)

// Print reproduces the source text of a subtree. For an unmodified tree
// the output is byte-identical to the text it was parsed from.
func Print(t Tree) string {
	var b strings.Builder
	printTree(&b, t)
	return b.String()
}

func printTree(b *strings.Builder, t Tree) {
	switch n := t.(type) {
	case *Identifier:
		b.WriteString(n.Prefix.String())
		b.WriteString(n.Name)
	case *Literal:
		b.WriteString(n.Prefix.String())
		b.WriteString(n.Source)
	case *Empty:
		b.WriteString(n.Prefix.String())
	case *MethodCall:
		printMethodCall(b, n)
	case *Binary:
		b.WriteString(n.Prefix.String())
		printTree(b, n.Left)
		b.WriteString(n.Operator.Before.String())
		b.WriteString(n.Operator.Element)
		printTree(b, n.Right)
	case *Assignment:
		b.WriteString(n.Prefix.String())
		printTree(b, n.Target)
		b.WriteString(n.Value.Before.String())
		b.WriteString("=")
		printTree(b, n.Value.Element)
	case *CompilationUnit:
		if n.CharsetBomMarked {
			b.WriteString("\uFEFF")
		}
		b.WriteString(n.Prefix.String())
		for _, stmt := range n.Statements {
			printTree(b, stmt)
		}
		b.WriteString(n.EOF.String())
	default:
		panic(fmt.Sprintf("printer has no rule for %T", t))
	}
}

func printMethodCall(b *strings.Builder, n *MethodCall) {
	b.WriteString(n.Prefix.String())
	if n.Receiver != nil {
		printTree(b, n.Receiver.Element)
		b.WriteString(n.Receiver.After.String())
		b.WriteString(".")
	}
	b.WriteString(n.Name.Prefix.String())
	b.WriteString(n.Name.Name)

	elems := n.Arguments.Elements
	omitted := n.Markers.Has(OmitParentheses{}.Kind()) ||
		n.Arguments.Markers.Has(OmitParentheses{}.Kind())

	b.WriteString(n.Arguments.Before.String())
	if len(elems) == 0 {
		return
	}
	if !omitted {
		b.WriteString("(")
	}
	for i, el := range elems {
		printTree(b, el.Element)
		b.WriteString(el.After.String())
		if i < len(elems)-1 {
			b.WriteString(",")
		} else if !omitted {
			b.WriteString(")")
		}
	}
}
