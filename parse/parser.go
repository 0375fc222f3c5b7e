package parse

import (
	"context"
	"fmt"
	"os"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/regraft/tree"
)

// Parser turns raw source bytes into a lossless compilation unit. The
// foreign tree comes from tree-sitter; the parser only needs its node
// kinds and structure, never its byte spans for formatting, because the
// scanner re-reads every formatting byte itself.
//
// A Parser is safe to reuse across files but not across goroutines;
// callers that parse in parallel create one Parser per worker.
type Parser struct {
	config LanguageConfig
	parser *sitter.Parser
}

// NewParser creates a parser for the given language.
func NewParser(config LanguageConfig) *Parser {
	p := sitter.NewParser()
	lang := config.GetLanguage()
	if lang == nil {
		panic(fmt.Sprintf("failed to load %s language for tree-sitter", config.Language()))
	}
	p.SetLanguage(lang)
	return &Parser{config: config, parser: p}
}

// Config returns the language configuration the parser was built with.
func (p *Parser) Config() LanguageConfig { return p.config }

// Parse ingests one compilation unit. File attributes, when known, are
// passed through unchanged into the resulting node.
func (p *Parser) Parse(ctx context.Context, sourcePath string, raw []byte, attrs *tree.FileAttributes) (*tree.CompilationUnit, error) {
	enc := DetectEncoding(raw)

	foreign, err := p.parser.ParseCtx(ctx, nil, []byte(enc.Text))
	if err != nil || foreign == nil {
		return nil, fmt.Errorf("parsing %s: %w", sourcePath, err)
	}
	defer foreign.Close()

	scanner := NewScanner(enc.Text, p.config.Comments())
	statements, eof, err := p.config.NewIngester().Ingest(scanner, foreign.RootNode(), []byte(enc.Text))
	if err != nil {
		return nil, fmt.Errorf("ingesting %s: %w", sourcePath, err)
	}

	return &tree.CompilationUnit{
		Node:             tree.NewNode(tree.EmptySpace),
		SourcePath:       sourcePath,
		FileAttributes:   attrs,
		Charset:          enc.Charset,
		CharsetBomMarked: enc.BomMarked,
		CommentSyntax:    p.config.Comments(),
		Statements:       statements,
		EOF:              eof,
	}, nil
}

// ParseFile reads and ingests a file from disk, capturing its
// file-system attributes.
func (p *Parser) ParseFile(ctx context.Context, path string) (*tree.CompilationUnit, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var attrs *tree.FileAttributes
	if info, err := os.Stat(path); err == nil {
		attrs = &tree.FileAttributes{
			Size:         info.Size(),
			Mode:         info.Mode(),
			LastModified: info.ModTime(),
		}
	}
	return p.Parse(ctx, path, raw, attrs)
}
