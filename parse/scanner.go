// Package parse ingests foreign syntax trees produced by tree-sitter
// into lossless semantic trees, reconstructing the whitespace, comments,
// and punctuation the foreign tree discards.
package parse

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/oxhq/regraft/tree"
)

// Scanner is a forward-only cursor into immutable source text. One
// scanner belongs to one ingestion run; it is never shared across
// goroutines and never rewinds.
type Scanner struct {
	source string
	cursor int
	syntax tree.CommentSyntax
}

// NewScanner creates a scanner over source. The comment syntax must
// match the language being scanned or delimiters inside comments will
// not be protected from false matches.
func NewScanner(source string, syntax tree.CommentSyntax) *Scanner {
	return &Scanner{source: source, syntax: syntax}
}

// Pos returns the current byte offset.
func (s *Scanner) Pos() int { return s.cursor }

// HasPrefix reports whether the text at the cursor starts with str.
func (s *Scanner) HasPrefix(str string) bool {
	return strings.HasPrefix(s.source[s.cursor:], str)
}

// Skip advances past token if the text at the cursor starts with it,
// and is a no-op otherwise. The token is returned either way so callers
// can chain consumption with the text they expected.
func (s *Scanner) Skip(token string) string {
	if s.HasPrefix(token) {
		s.cursor += len(token)
	}
	return token
}

// Whitespace consumes the maximal run of whitespace at the cursor. It
// does not cross into comments; a second call without an intervening
// advance returns an empty Space.
func (s *Scanner) Whitespace() tree.Space {
	i := s.cursor
	for i < len(s.source) {
		r, size := utf8.DecodeRuneInString(s.source[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += size
	}
	ws := s.source[s.cursor:i]
	s.cursor = i
	return tree.FormatSpace(ws, s.syntax)
}

// SourceBefore scans forward to the next occurrence of delim outside of
// any comment, returns everything in between as a Space, and advances
// the cursor past the delimiter. When the delimiter is never found the
// cursor stays put and an empty Space is returned; a missing delimiter
// usually means optional syntax was correctly detected, so this is not
// an error.
func (s *Scanner) SourceBefore(delim string) tree.Space {
	delimIndex := s.PositionOfNext(delim)
	if delimIndex < 0 {
		return tree.EmptySpace
	}
	prefix := s.source[s.cursor:delimIndex]
	s.cursor = delimIndex + len(delim)
	return tree.FormatSpace(prefix, s.syntax)
}

// PositionOfNext finds the byte offset of the next occurrence of delim
// at or after the cursor, skipping over line and block comments, or -1
// when there is none. The cursor does not move.
func (s *Scanner) PositionOfNext(delim string) int {
	inLineComment := false
	inBlockComment := false

	for i := s.cursor; i <= len(s.source)-len(delim); i++ {
		if inLineComment {
			if s.source[i] == '\n' {
				inLineComment = false
			}
			continue
		}
		if inBlockComment {
			if s.syntax.BlockClose != "" && strings.HasPrefix(s.source[i:], s.syntax.BlockClose) {
				inBlockComment = false
				i += len(s.syntax.BlockClose) - 1
			}
			continue
		}
		if s.syntax.Line != "" && strings.HasPrefix(s.source[i:], s.syntax.Line) {
			inLineComment = true
			i += len(s.syntax.Line) - 1
			continue
		}
		if s.syntax.BlockOpen != "" && strings.HasPrefix(s.source[i:], s.syntax.BlockOpen) {
			inBlockComment = true
			i += len(s.syntax.BlockOpen) - 1
			continue
		}
		if strings.HasPrefix(s.source[i:], delim) {
			return i
		}
	}
	return -1
}

// RemainingSpace consumes everything from the cursor to the end of the
// source, typically the trailing whitespace and comments of a file.
func (s *Scanner) RemainingSpace() tree.Space {
	rest := s.source[s.cursor:]
	s.cursor = len(s.source)
	return tree.FormatSpace(rest, s.syntax)
}
