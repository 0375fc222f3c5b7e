// Package scanner discovers the source files a run should touch:
// recursive directory traversal with extension, glob, size, and
// gitignore filtering.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

// Config holds scanner configuration options.
type Config struct {
	MaxBytes       int64
	FollowSymlinks bool
	IncludeGlobs   []string
	ExcludeGlobs   []string
	NoGitignore    bool
	Extensions     []string // e.g. [".rb"]; empty accepts everything
}

// Scanner handles recursive directory traversal with filtering.
type Scanner struct {
	config    Config
	gitignore *ignore.GitIgnore
}

// New creates a scanner with the given configuration.
func New(config Config) *Scanner {
	s := &Scanner{config: config}
	if !config.NoGitignore {
		s.loadGitignore()
	}
	return s
}

// loadGitignore compiles .gitignore patterns from the working directory
// and its ancestors, closest file taking precedence.
func (s *Scanner) loadGitignore() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	var files []string
	for dir := cwd; ; {
		path := filepath.Join(dir, ".gitignore")
		if _, err := os.Stat(path); err == nil {
			files = append(files, path)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	if len(files) == 0 {
		return
	}
	slices.Reverse(files)
	var gi *ignore.GitIgnore
	if len(files) == 1 {
		gi, err = ignore.CompileIgnoreFile(files[0])
	} else {
		gi, err = ignore.CompileIgnoreFileAndLines(files[0], files[1:]...)
	}
	if err == nil {
		s.gitignore = gi
	}
}

// ScanTargets resolves a list of file and directory targets into the
// deduplicated list of files to process.
func (s *Scanner) ScanTargets(ctx context.Context, targets []string) ([]string, error) {
	if len(targets) == 0 {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
		targets = []string{cwd}
	}

	var all []string
	for _, target := range targets {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		files, err := s.scanTarget(ctx, target)
		if err != nil {
			return nil, fmt.Errorf("scanning target %s: %w", target, err)
		}
		all = append(all, files...)
	}
	return dedupe(all), nil
}

func (s *Scanner) scanTarget(ctx context.Context, target string) ([]string, error) {
	info, err := os.Lstat(target)
	if err != nil {
		return nil, fmt.Errorf("accessing target %s: %w", target, err)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		if !s.config.FollowSymlinks {
			return nil, nil
		}
		resolved, err := filepath.EvalSymlinks(target)
		if err != nil {
			return nil, fmt.Errorf("resolving symlink %s: %w", target, err)
		}
		return s.scanTarget(ctx, resolved)
	}

	if info.Mode().IsRegular() {
		if s.shouldProcessFile(target, info) {
			return []string{target}, nil
		}
		return nil, nil
	}

	if info.IsDir() {
		return s.scanDirectory(ctx, target)
	}
	return nil, nil
}

func (s *Scanner) scanDirectory(ctx context.Context, dir string) ([]string, error) {
	var files []string
	err := fs.WalkDir(os.DirFS(dir), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		full := filepath.Join(dir, path)
		if d.IsDir() {
			if s.shouldSkipDirectory(path) {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return fmt.Errorf("getting file info for %s: %w", full, err)
			}
			if s.shouldProcessFile(full, info) {
				files = append(files, full)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory %s: %w", dir, err)
	}
	return files, nil
}

func (s *Scanner) shouldProcessFile(path string, info os.FileInfo) bool {
	if s.gitignore != nil {
		if rel, err := filepath.Rel(".", path); err == nil && s.gitignore.MatchesPath(rel) {
			return false
		}
	}
	if s.config.MaxBytes > 0 && info.Size() > s.config.MaxBytes {
		return false
	}
	if len(s.config.Extensions) > 0 && !slices.Contains(s.config.Extensions, filepath.Ext(path)) {
		return false
	}

	basename := filepath.Base(path)
	if len(s.config.IncludeGlobs) > 0 {
		matched := false
		for _, pattern := range s.config.IncludeGlobs {
			if ok, _ := doublestar.Match(pattern, basename); ok {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, pattern := range s.config.ExcludeGlobs {
		if ok, _ := doublestar.Match(pattern, basename); ok {
			return false
		}
	}
	return true
}

func (s *Scanner) shouldSkipDirectory(path string) bool {
	if s.gitignore != nil {
		if rel, err := filepath.Rel(".", path); err == nil && s.gitignore.MatchesPath(rel) {
			return true
		}
	}
	dirname := filepath.Base(path)
	skip := []string{".git", "vendor", "node_modules", "dist", "build", ".regraft"}
	if slices.Contains(skip, dirname) {
		return true
	}
	return strings.HasPrefix(dirname, ".") && dirname != "."
}

func dedupe(files []string) []string {
	seen := make(map[string]bool, len(files))
	var out []string
	for _, f := range files {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}
