package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func basenames(paths []string) []string {
	var out []string
	for _, p := range paths {
		out = append(out, filepath.Base(p))
	}
	return out
}

func TestScanTargetsFiltersByExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.rb", "puts(1)\n")
	writeFile(t, dir, "b.txt", "not ruby\n")
	writeFile(t, dir, "sub/c.rb", "puts(2)\n")

	s := New(Config{NoGitignore: true, Extensions: []string{".rb"}})
	files, err := s.ScanTargets(context.Background(), []string{dir})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.rb", "c.rb"}, basenames(files))
}

func TestScanTargetsSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.rb", "puts(1)\n")

	s := New(Config{NoGitignore: true, Extensions: []string{".rb"}})
	files, err := s.ScanTargets(context.Background(), []string{path})
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}

func TestScanTargetsMissingTarget(t *testing.T) {
	s := New(Config{NoGitignore: true})
	_, err := s.ScanTargets(context.Background(), []string{"/no/such/path"})
	assert.Error(t, err)
}

func TestScanTargetsSkipsWellKnownDirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep.rb", "puts(1)\n")
	writeFile(t, dir, ".git/skip.rb", "puts(1)\n")
	writeFile(t, dir, "vendor/skip.rb", "puts(1)\n")
	writeFile(t, dir, "node_modules/skip.rb", "puts(1)\n")
	writeFile(t, dir, ".hidden/skip.rb", "puts(1)\n")

	s := New(Config{NoGitignore: true, Extensions: []string{".rb"}})
	files, err := s.ScanTargets(context.Background(), []string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.rb"}, basenames(files))
}

func TestScanTargetsMaxBytes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "small.rb", "x = 1\n")
	writeFile(t, dir, "large.rb", string(make([]byte, 2048)))

	s := New(Config{NoGitignore: true, Extensions: []string{".rb"}, MaxBytes: 1024})
	files, err := s.ScanTargets(context.Background(), []string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{"small.rb"}, basenames(files))
}

func TestScanTargetsIncludeExcludeGlobs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "billing.rb", "puts(1)\n")
	writeFile(t, dir, "billing_test.rb", "puts(1)\n")
	writeFile(t, dir, "other.rb", "puts(1)\n")

	s := New(Config{
		NoGitignore:  true,
		Extensions:   []string{".rb"},
		IncludeGlobs: []string{"billing*"},
		ExcludeGlobs: []string{"*_test.rb"},
	})
	files, err := s.ScanTargets(context.Background(), []string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{"billing.rb"}, basenames(files))
}

func TestScanTargetsDeduplicates(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.rb", "puts(1)\n")

	s := New(Config{NoGitignore: true, Extensions: []string{".rb"}})
	files, err := s.ScanTargets(context.Background(), []string{path, path, dir})
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestScanTargetsRespectsGitignore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".gitignore", "ignored.rb\n")
	writeFile(t, dir, "keep.rb", "puts(1)\n")
	writeFile(t, dir, "ignored.rb", "puts(1)\n")

	t.Chdir(dir)
	s := New(Config{Extensions: []string{".rb"}})
	files, err := s.ScanTargets(context.Background(), []string{"."})
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.rb"}, basenames(files))
}

func TestScanTargetsCancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.rb", "puts(1)\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := New(Config{NoGitignore: true})
	_, err := s.ScanTargets(ctx, []string{dir})
	assert.Error(t, err)
}
