// Package core drives lossless parsing and template rewriting across
// many files at once. Files are independent compilation units, so they
// are processed in parallel; each worker owns its own parser and cursor
// state.
package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/oxhq/regraft/parse"
	"github.com/oxhq/regraft/template"
	"github.com/oxhq/regraft/tree"
)

// Processor runs verification and rewrites over sets of files.
type Processor struct {
	config  parse.LanguageConfig
	workers int
	writer  *AtomicWriter
}

// NewProcessor creates a processor for the given language.
func NewProcessor(config parse.LanguageConfig) *Processor {
	return &Processor{
		config:  config,
		workers: 8,
		writer:  NewAtomicWriter(DefaultAtomicConfig()),
	}
}

// Writer exposes the processor's atomic writer, for committing staged
// results produced earlier.
func (p *Processor) Writer() *AtomicWriter { return p.writer }

// SetWorkers overrides the parallelism for subsequent runs.
func (p *Processor) SetWorkers(n int) {
	if n > 0 {
		p.workers = n
	}
}

// VerifyResult is the outcome of the round-trip check for one file.
type VerifyResult struct {
	Path  string
	Clean bool
	Diff  string
	Err   error
}

// VerifyFiles ingests every file and checks the round-trip law: an
// unmodified tree must print back to its source byte-for-byte. Failures
// carry a unified diff of what printing perturbed.
func (p *Processor) VerifyFiles(ctx context.Context, paths []string) []VerifyResult {
	results := make([]VerifyResult, len(paths))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			parser := parse.NewParser(p.config)
			for i := range jobs {
				results[i] = p.verifyFile(ctx, parser, paths[i])
			}
		}()
	}
	for i := range paths {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return results
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	return results
}

func (p *Processor) verifyFile(ctx context.Context, parser *parse.Parser, path string) VerifyResult {
	raw, err := os.ReadFile(path)
	if err != nil {
		return VerifyResult{Path: path, Err: err}
	}
	unit, err := parser.Parse(ctx, path, raw, nil)
	if err != nil {
		return VerifyResult{Path: path, Err: err}
	}
	printed := tree.Print(unit)
	if printed == string(raw) {
		return VerifyResult{Path: path, Clean: true}
	}
	return VerifyResult{Path: path, Diff: unifiedDiff(string(raw), printed)}
}

// RewriteOp describes a match-and-replace pass: subtrees matching the
// Match pattern are replaced by the Rewrite template, which receives
// the subtrees captured at the pattern's placeholder positions as its
// own parameters, in order.
type RewriteOp struct {
	Match   string
	Rewrite string
	DryRun  bool
}

// RewriteResult is the outcome of a rewrite over one file. Bindings
// holds, per applied match, the source text of the subtrees captured at
// the pattern's placeholder positions.
type RewriteResult struct {
	Path       string
	Modified   string
	Diff       string
	BaseDigest string
	NewDigest  string
	MatchCount int
	Bindings   [][]string
	Err        error
}

// RewriteFiles applies op to every file in parallel. Templates are
// compiled once and shared across workers; a compiled template is
// immutable and safe for concurrent use.
func (p *Processor) RewriteFiles(ctx context.Context, paths []string, op RewriteOp) ([]RewriteResult, error) {
	matchTmpl, err := template.NewBuilder(op.Match).Build()
	if err != nil {
		return nil, fmt.Errorf("compiling match pattern: %w", err)
	}
	rewriteTmpl, err := template.NewBuilder(op.Rewrite).Build()
	if err != nil {
		return nil, fmt.Errorf("compiling rewrite template: %w", err)
	}
	if rewriteTmpl.ParameterCount() > matchTmpl.ParameterCount() {
		return nil, fmt.Errorf("rewrite template takes %d parameters but the match pattern captures only %d",
			rewriteTmpl.ParameterCount(), matchTmpl.ParameterCount())
	}

	results := make([]RewriteResult, len(paths))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			parser := parse.NewParser(p.config)
			for i := range jobs {
				results[i] = p.rewriteFile(ctx, parser, paths[i], matchTmpl, rewriteTmpl, op)
			}
		}()
	}
	for i := range paths {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return results, ctx.Err()
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	return results, nil
}

type patternMatch struct {
	target     string
	parameters []any
}

func (p *Processor) rewriteFile(ctx context.Context, parser *parse.Parser, path string, matchTmpl, rewriteTmpl *template.Template, op RewriteOp) RewriteResult {
	raw, err := os.ReadFile(path)
	if err != nil {
		return RewriteResult{Path: path, Err: err}
	}
	unit, err := parser.Parse(ctx, path, raw, nil)
	if err != nil {
		return RewriteResult{Path: path, Err: err}
	}

	matches := findMatches(unit, matchTmpl, rewriteTmpl.ParameterCount())
	var current tree.Tree = unit
	applied := 0
	var bindings [][]string
	for _, m := range matches {
		scope := tree.NewCursor(nil, current)
		next, err := rewriteTmpl.Apply(scope, tree.Coordinates{Target: m.target, Mode: tree.ModeReplace}, m.parameters...)
		if err != nil {
			// an earlier rewrite consumed this subtree
			continue
		}
		current = next
		applied++
		var captured []string
		for _, p := range m.parameters {
			if t, ok := p.(tree.Tree); ok {
				captured = append(captured, tree.Print(tree.WithPrefix(t, tree.EmptySpace)))
			}
		}
		bindings = append(bindings, captured)
	}

	result := RewriteResult{
		Path:       path,
		MatchCount: applied,
		BaseDigest: digest(string(raw)),
		Bindings:   bindings,
	}
	if applied == 0 {
		return result
	}
	result.Modified = tree.Print(current)
	result.NewDigest = digest(result.Modified)
	result.Diff = unifiedDiff(string(raw), result.Modified)
	if !op.DryRun {
		if err := p.writer.WriteFile(path, result.Modified); err != nil {
			result.Err = err
		}
	}
	return result
}

// findMatches walks the unit in source order collecting every subtree
// the pattern matches, outermost first, with the subtrees bound at
// placeholder positions as replacement parameters.
func findMatches(unit *tree.CompilationUnit, matchTmpl *template.Template, paramCount int) []patternMatch {
	var matches []patternMatch
	tree.Walk(unit, nil, func(c *tree.Cursor) bool {
		t, ok := c.Value().(tree.Tree)
		if !ok {
			return true
		}
		m := matchTmpl.Matcher(c)
		if !m.Find() {
			return true
		}
		pm := patternMatch{target: tree.IDOf(t)}
		for i := 0; i < paramCount; i++ {
			pm.parameters = append(pm.parameters, any(m.Parameter(i)))
		}
		matches = append(matches, pm)
		return true
	})
	return matches
}

func digest(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func unifiedDiff(original, modified string) string {
	if original == modified {
		return ""
	}
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(modified),
		FromFile: "original",
		ToFile:   "modified",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return fmt.Sprintf("--- original\n+++ modified\n@@ changes @@\n%d bytes -> %d bytes",
			len(original), len(modified))
	}
	return strings.TrimRight(text, "\n") + "\n"
}
