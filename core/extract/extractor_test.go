package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestExtractResolvesLocalImportsOnly(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "main.go"), `package main

import (
	"fmt"

	"example.com/proj/internal/util"
)

func main() {
	fmt.Println(util.Name)
}
`)

	e := NewGoExtractor("example.com/proj", root, nil)
	deps, err := e.Extract(filepath.Join(root, "main.go"), root)
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(root, "internal", "util")}, deps)
}

func TestExtractEmptyFileReturnsNoDeps(t *testing.T) {
	root := t.TempDir()
	empty := filepath.Join(root, "empty.go")
	mustWrite(t, empty, "")

	e := NewGoExtractor("example.com/proj", root, nil)
	deps, err := e.Extract(empty, root)
	require.NoError(t, err)
	assert.Empty(t, deps)
}

func TestExtractFiltersIgnoredGlobs(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "main.go"), `package main

import "example.com/proj/vendor/thirdparty"

var _ = thirdparty.X
`)

	e := NewGoExtractor("example.com/proj", root, []string{"vendor/**"})
	deps, err := e.Extract(filepath.Join(root, "main.go"), root)
	require.NoError(t, err)
	assert.Empty(t, deps, "vendor/** should drop the resolved import")
}
