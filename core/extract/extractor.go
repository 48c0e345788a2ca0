// Package extract implements the default dependency extractor: given a
// Go source file, parse its import declarations and resolve each local
// (module-relative) import to the absolute directory it names, the way
// populate.Extractor requires.
package extract

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/watchloom/depgraph/core/logger"
)

// GoExtractor resolves a Go source file's local (in-module) imports to
// the absolute path of the package directory they name. Imports outside
// ModulePath resolve to "" and Extract drops them. Resolved paths that
// match an Ignored glob are dropped as well.
type GoExtractor struct {
	// ModulePath is the module declared in go.mod, e.g.
	// "github.com/watchloom/depgraph". Imports under this prefix resolve
	// to a directory inside the module; everything else is treated as
	// external and omitted.
	ModulePath string
	// ModuleRoot is the absolute directory containing go.mod, used to
	// translate a resolved import path back to a filesystem path.
	ModuleRoot string
	// Ignored is a set of doublestar glob patterns; any resolved path
	// matching one is dropped from the result.
	Ignored []string
}

// NewGoExtractor constructs a GoExtractor anchored at moduleRoot for
// imports under modulePath.
func NewGoExtractor(modulePath, moduleRoot string, ignored []string) *GoExtractor {
	return &GoExtractor{ModulePath: modulePath, ModuleRoot: moduleRoot, Ignored: ignored}
}

// Extract satisfies populate.Extractor. filename is parsed for its
// import declarations; each import under ModulePath is resolved to the
// absolute directory it names. Go dependencies are package-level, not
// file-level, so the graph tracks each imported package as one node:
// its directory, not any particular file inside it.
func (e *GoExtractor) Extract(filename, cwd string) ([]string, error) {
	fset := token.NewFileSet()

	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("extract: read %s: %w", filename, err)
	}

	if strings.TrimSpace(string(src)) == "" {
		logger.Debug("extract: empty file %s, no imports", filename)
		return nil, nil
	}

	f, err := parser.ParseFile(fset, filename, src, parser.ImportsOnly)
	if err != nil {
		return nil, fmt.Errorf("extract: parse %s: %w", filename, err)
	}

	seen := make(map[string]struct{})
	var out []string
	for _, imp := range f.Imports {
		path, resolveErr := e.resolveImport(imp)
		if resolveErr != nil || path == "" {
			continue
		}
		if e.isIgnored(path) {
			continue
		}
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		out = append(out, path)
	}

	logger.Debug("extract: %s -> %d local imports", filename, len(out))
	return out, nil
}

// resolveImport turns one import spec into an absolute filesystem
// directory, or "" if the import falls outside ModulePath.
func (e *GoExtractor) resolveImport(imp *ast.ImportSpec) (string, error) {
	raw := strings.Trim(imp.Path.Value, `"`)

	if raw == e.ModulePath {
		return e.ModuleRoot, nil
	}

	prefix := e.ModulePath + "/"
	if !strings.HasPrefix(raw, prefix) {
		return "", nil
	}

	rel := strings.TrimPrefix(raw, prefix)
	return filepath.Join(e.ModuleRoot, filepath.FromSlash(rel)), nil
}

func (e *GoExtractor) isIgnored(path string) bool {
	for _, pattern := range e.Ignored {
		rel, err := filepath.Rel(e.ModuleRoot, path)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
