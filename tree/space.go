package tree

import "strings"

// CommentSyntax describes the comment delimiters of the language being
// scanned. Space parsing and delimiter search are only correct when this
// matches the language the source was written in.
type CommentSyntax struct {
	Line       string // e.g. "#" or "//"
	BlockOpen  string // e.g. "=begin" or "/*", empty if none
	BlockClose string // e.g. "=end" or "*/", empty if none
}

// Comment is a single comment captured inside a Space, together with the
// whitespace that followed it.
type Comment struct {
	Text   string // full comment text including its delimiters
	Suffix string // whitespace between this comment and the next token
}

// Space is the formatting (whitespace and comments) that occurred
// immediately before a token. It is an opaque payload: nothing interprets
// it beyond comment boundary detection at capture time, and printing a
// Space reproduces exactly the bytes it was parsed from.
type Space struct {
	Whitespace string // whitespace before the first comment (or everything)
	Comments   []Comment
}

// EmptySpace is the zero formatting prefix.
var EmptySpace = Space{}

// FormatSpace splits a raw formatting run into leading whitespace and a
// sequence of comments, each paired with its trailing whitespace.
func FormatSpace(raw string, syntax CommentSyntax) Space {
	if raw == "" {
		return EmptySpace
	}

	sp := Space{}
	i := 0
	segStart := 0
	for i < len(raw) {
		if syntax.Line != "" && strings.HasPrefix(raw[i:], syntax.Line) {
			sp = sp.append(raw[segStart:i])
			end := strings.IndexByte(raw[i:], '\n')
			if end < 0 {
				end = len(raw) - i
			}
			sp.Comments = append(sp.Comments, Comment{Text: raw[i : i+end]})
			i += end
			segStart = i
			continue
		}
		if syntax.BlockOpen != "" && strings.HasPrefix(raw[i:], syntax.BlockOpen) {
			sp = sp.append(raw[segStart:i])
			end := strings.Index(raw[i:], syntax.BlockClose)
			if end < 0 {
				end = len(raw) - i
			} else {
				end += len(syntax.BlockClose)
			}
			sp.Comments = append(sp.Comments, Comment{Text: raw[i : i+end]})
			i += end
			segStart = i
			continue
		}
		i++
	}
	return sp.append(raw[segStart:])
}

// append attaches trailing whitespace to the last comment, or to the
// leading whitespace run when no comment has been seen yet.
func (s Space) append(ws string) Space {
	if ws == "" {
		return s
	}
	if len(s.Comments) == 0 {
		s.Whitespace += ws
		return s
	}
	last := len(s.Comments) - 1
	s.Comments[last].Suffix += ws
	return s
}

// String reproduces the exact bytes this Space was parsed from.
func (s Space) String() string {
	var b strings.Builder
	b.WriteString(s.Whitespace)
	for _, c := range s.Comments {
		b.WriteString(c.Text)
		b.WriteString(c.Suffix)
	}
	return b.String()
}

// IsEmpty reports whether the Space contributes no bytes when printed.
func (s Space) IsEmpty() bool {
	return s.Whitespace == "" && len(s.Comments) == 0
}
