package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxhq/codegraph/lang"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func collect(t *testing.T, results <-chan WalkResult) map[string]WalkResult {
	t.Helper()
	out := map[string]WalkResult{}
	for r := range results {
		out[filepath.Base(r.Path)] = r
	}
	return out
}

func TestWalkSupportedFilesOnly(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.go":       "package main\n",
		"util.py":       "x = 1\n",
		"README.md":     "# readme\n",
		"sub/app.ts":    "const a = 1;",
		"sub/notes.txt": "notes",
	})

	fw := NewFileWalker()
	results, err := fw.Walk(context.Background(), WalkScope{Root: root})
	require.NoError(t, err)

	got := collect(t, results)
	require.Contains(t, got, "main.go")
	require.Contains(t, got, "util.py")
	require.Contains(t, got, "app.ts")
	require.NotContains(t, got, "README.md")
	require.NotContains(t, got, "notes.txt")

	require.Equal(t, lang.Go, got["main.go"].Language)
	require.Equal(t, "package main\n", string(got["main.go"].Data))
}

func TestWalkExcludeGlobs(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/app.go":       "package app\n",
		"vendor/dep.go":    "package dep\n",
		"src/app_test.go":  "package app\n",
		"build/gen/out.go": "package gen\n",
	})

	fw := NewFileWalker()
	results, err := fw.Walk(context.Background(), WalkScope{
		Root:    root,
		Exclude: []string{"vendor/**", "**/*_test.go", "build/**"},
	})
	require.NoError(t, err)

	got := collect(t, results)
	require.Contains(t, got, "app.go")
	require.NotContains(t, got, "dep.go")
	require.NotContains(t, got, "app_test.go")
	require.NotContains(t, got, "out.go")
}

func TestWalkGitignore(t *testing.T) {
	root := writeTree(t, map[string]string{
		".gitignore":  "dist/\n*.gen.go\n",
		"main.go":     "package main\n",
		"dist/out.go": "package out\n",
		"api.gen.go":  "package api\n",
	})

	fw := NewFileWalker()
	results, err := fw.Walk(context.Background(), WalkScope{Root: root})
	require.NoError(t, err)

	got := collect(t, results)
	require.Contains(t, got, "main.go")
	require.NotContains(t, got, "out.go")
	require.NotContains(t, got, "api.gen.go")
}

func TestWalkMaxBytes(t *testing.T) {
	root := writeTree(t, map[string]string{
		"small.go": "package a\n",
		"big.go":   "package a\n// " + string(make([]byte, 4096)) + "\n",
	})

	fw := NewFileWalker()
	results, err := fw.Walk(context.Background(), WalkScope{Root: root, MaxBytes: 1024})
	require.NoError(t, err)

	got := collect(t, results)
	require.NoError(t, got["small.go"].Error)
	require.Error(t, got["big.go"].Error)
}

func TestWalkInvalidRoot(t *testing.T) {
	fw := NewFileWalker()
	_, err := fw.Walk(context.Background(), WalkScope{Root: filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)
}
