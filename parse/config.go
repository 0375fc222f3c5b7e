package parse

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/ruby"

	"github.com/oxhq/regraft/tree"
)

// LanguageConfig defines the language-specific pieces of ingestion: the
// tree-sitter grammar that produces the foreign tree, the comment
// syntax the scanner must respect, and the visitor that converts
// foreign nodes into LST nodes.
type LanguageConfig interface {
	Language() string
	Extensions() []string
	GetLanguage() *sitter.Language
	Comments() tree.CommentSyntax
	NewIngester() Ingester
}

// Ingester converts one foreign compilation unit into LST statements,
// consuming the scanner forward as it goes. The leftover trailing text
// is returned as the file's own trailing Space.
type Ingester interface {
	Ingest(s *Scanner, root *sitter.Node, src []byte) ([]tree.Tree, tree.Space, error)
}

// RubyConfig is the Ruby language mapping.
type RubyConfig struct{}

// Language identifier.
func (RubyConfig) Language() string { return "ruby" }

// Extensions supported.
func (RubyConfig) Extensions() []string { return []string{".rb"} }

// GetLanguage returns the tree-sitter grammar for Ruby.
func (RubyConfig) GetLanguage() *sitter.Language { return ruby.GetLanguage() }

// Comments returns Ruby comment delimiters.
func (RubyConfig) Comments() tree.CommentSyntax {
	return tree.CommentSyntax{Line: "#", BlockOpen: "=begin", BlockClose: "=end"}
}

// NewIngester returns a fresh Ruby visitor. Visitors hold per-run state
// and must not be reused across files.
func (RubyConfig) NewIngester() Ingester { return &rubyVisitor{} }
