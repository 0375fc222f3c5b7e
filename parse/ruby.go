package parse

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/regraft/tree"
)

// rubyVisitor converts tree-sitter's Ruby nodes into LST nodes. Each
// conversion consumes the scanner forward over exactly the source span
// the foreign node owns; the sequence of SourceBefore/Whitespace/Skip
// calls is the textual shape of that node kind.
type rubyVisitor struct {
	scanner *Scanner
	src     []byte
}

// Ingest converts the root program node's statements in order, then
// captures the remaining trailing text as the file's own Space.
func (v *rubyVisitor) Ingest(s *Scanner, root *sitter.Node, src []byte) ([]tree.Tree, tree.Space, error) {
	v.scanner = s
	v.src = src

	if root.Type() != "program" {
		return nil, tree.EmptySpace, v.unsupported(root)
	}

	var statements []tree.Tree
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child.Type() == "comment" {
			// comments are captured as Space by the next conversion
			continue
		}
		converted, err := v.visit(child)
		if err != nil {
			return nil, tree.EmptySpace, err
		}
		statements = append(statements, converted)
	}
	return statements, s.RemainingSpace(), nil
}

// visit dispatches on the foreign node kind. A kind with no mapping
// aborts the whole ingestion; lossy conversion is a defect, not a
// degraded mode.
func (v *rubyVisitor) visit(n *sitter.Node) (tree.Tree, error) {
	switch n.Type() {
	case "call":
		return v.visitCall(n)
	case "identifier", "constant":
		return v.visitIdentifier(n)
	case "string":
		return v.visitString(n)
	case "integer", "float":
		return v.visitNumber(n)
	case "true", "false", "nil":
		return v.visitKeyword(n)
	case "binary":
		return v.visitBinary(n)
	case "assignment":
		return v.visitAssignment(n)
	}
	return nil, v.unsupported(n)
}

// visitCall: optional receiver padded to the dot, the method name, then
// an optional argument list. Parentheses elided in source are recorded
// with an OmitParentheses marker on the argument container, or on the
// call itself when there is no argument list at all.
func (v *rubyVisitor) visitCall(n *sitter.Node) (tree.Tree, error) {
	s := v.scanner
	method := n.ChildByFieldName("method")
	if method == nil {
		return nil, v.unsupported(n)
	}
	name := v.text(method)

	prefix := tree.EmptySpace
	namePrefix := tree.EmptySpace
	var receiver *tree.RightPadded[tree.Tree]
	if recv := n.ChildByFieldName("receiver"); recv != nil {
		// the receiver's own prefix carries the call's leading space
		converted, err := v.visit(recv)
		if err != nil {
			return nil, err
		}
		padded := tree.PadRight(converted, s.SourceBefore("."))
		receiver = &padded
		namePrefix = s.SourceBefore(name)
	} else {
		prefix = s.SourceBefore(name)
	}

	node := tree.NewNode(prefix)
	args := n.ChildByFieldName("arguments")
	if args == nil {
		// no argument list in source at all, e.g. `obj.freeze`
		node.Markers = node.Markers.Add(tree.NewOmitParentheses())
		return &tree.MethodCall{
			Node:      node,
			Receiver:  receiver,
			Name:      tree.Identifier{Node: tree.NewNode(namePrefix), Name: name},
			Arguments: tree.NewContainer[tree.Tree](tree.EmptySpace, nil),
		}, nil
	}

	beforeArgs := s.Whitespace()
	omitted := !s.HasPrefix("(")
	if !omitted {
		s.Skip("(")
	}

	children := namedNonComment(args)
	var elements []tree.RightPadded[tree.Tree]
	if len(children) == 0 {
		if !omitted {
			// the gap between `(` and `)` belongs to an Empty element
			empty := &tree.Empty{Node: tree.NewNode(tree.EmptySpace)}
			elements = append(elements, tree.PadRight[tree.Tree](empty, s.SourceBefore(")")))
		}
	} else {
		for i, child := range children {
			converted, err := v.visit(child)
			if err != nil {
				return nil, err
			}
			var after tree.Space
			switch {
			case i < len(children)-1:
				after = s.SourceBefore(",")
			case omitted:
				after = tree.EmptySpace
			default:
				after = s.SourceBefore(")")
			}
			elements = append(elements, tree.PadRight(converted, after))
		}
	}

	arguments := tree.NewContainer(beforeArgs, elements)
	if omitted {
		arguments.Markers = arguments.Markers.Add(tree.NewOmitParentheses())
	}

	return &tree.MethodCall{
		Node:      node,
		Receiver:  receiver,
		Name:      tree.Identifier{Node: tree.NewNode(namePrefix), Name: name},
		Arguments: arguments,
	}, nil
}

func (v *rubyVisitor) visitIdentifier(n *sitter.Node) (tree.Tree, error) {
	name := v.text(n)
	return &tree.Identifier{Node: tree.NewNode(v.scanner.SourceBefore(name)), Name: name}, nil
}

func (v *rubyVisitor) visitString(n *sitter.Node) (tree.Tree, error) {
	s := v.scanner
	source := v.text(n)
	if len(source) < 2 {
		return nil, v.unsupported(n)
	}
	quote := source[:1]
	if quote != `"` && quote != "'" {
		return nil, v.unsupported(n)
	}
	value := source[1 : len(source)-1]
	prefix := s.SourceBefore(quote)
	s.Skip(value)
	s.Skip(quote)
	return &tree.Literal{Node: tree.NewNode(prefix), Value: value, Source: source}, nil
}

func (v *rubyVisitor) visitNumber(n *sitter.Node) (tree.Tree, error) {
	source := v.text(n)
	prefix := v.scanner.SourceBefore(source)
	digits := strings.ReplaceAll(source, "_", "")
	var value any
	if n.Type() == "integer" {
		parsed, err := strconv.ParseInt(digits, 0, 64)
		if err != nil {
			return nil, v.unsupported(n)
		}
		value = parsed
	} else {
		parsed, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			return nil, v.unsupported(n)
		}
		value = parsed
	}
	return &tree.Literal{Node: tree.NewNode(prefix), Value: value, Source: source}, nil
}

func (v *rubyVisitor) visitKeyword(n *sitter.Node) (tree.Tree, error) {
	source := v.text(n)
	prefix := v.scanner.SourceBefore(source)
	var value any
	switch n.Type() {
	case "true":
		value = true
	case "false":
		value = false
	case "nil":
		value = nil
	}
	return &tree.Literal{Node: tree.NewNode(prefix), Value: value, Source: source}, nil
}

func (v *rubyVisitor) visitBinary(n *sitter.Node) (tree.Tree, error) {
	s := v.scanner
	left, err := v.visit(n.ChildByFieldName("left"))
	if err != nil {
		return nil, err
	}
	operator := n.ChildByFieldName("operator")
	if operator == nil {
		return nil, v.unsupported(n)
	}
	opText := v.text(operator)
	opBefore := s.SourceBefore(opText)
	right, err := v.visit(n.ChildByFieldName("right"))
	if err != nil {
		return nil, err
	}
	// hoist the left operand's leading space so the expression's own
	// prefix carries it
	prefix := tree.PrefixOf(left)
	left = tree.WithPrefix(left, tree.EmptySpace)
	return &tree.Binary{
		Node:     tree.NewNode(prefix),
		Left:     left,
		Operator: tree.PadLeft(opBefore, opText),
		Right:    right,
	}, nil
}

func (v *rubyVisitor) visitAssignment(n *sitter.Node) (tree.Tree, error) {
	s := v.scanner
	target, err := v.visit(n.ChildByFieldName("left"))
	if err != nil {
		return nil, err
	}
	beforeEquals := s.SourceBefore("=")
	value, err := v.visit(n.ChildByFieldName("right"))
	if err != nil {
		return nil, err
	}
	prefix := tree.PrefixOf(target)
	target = tree.WithPrefix(target, tree.EmptySpace)
	return &tree.Assignment{
		Node:   tree.NewNode(prefix),
		Target: target,
		Value:  tree.PadLeft(beforeEquals, value),
	}, nil
}

func (v *rubyVisitor) text(n *sitter.Node) string {
	return n.Content(v.src)
}

func (v *rubyVisitor) unsupported(n *sitter.Node) error {
	return &UnsupportedNodeError{
		Kind:   n.Type(),
		Line:   int(n.StartPoint().Row) + 1,
		Column: int(n.StartPoint().Column) + 1,
	}
}

// namedNonComment lists a node's named children minus interleaved
// comment nodes, which the scanner absorbs into Space.
func namedNonComment(n *sitter.Node) []*sitter.Node {
	var children []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		children = append(children, child)
	}
	return children
}
