package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(prev) })
}

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadParsesYAMLOverDefault(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	content := `cache_dir: custom/cache
entry_files:
  - tests/a_test.go
ignored:
  - "**/testdata/**"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "depgraph.yaml"), []byte(content), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "custom/cache", cfg.CacheDir)
	assert.Equal(t, []string{"tests/a_test.go"}, cfg.EntryFiles)
	assert.Equal(t, []string{"**/testdata/**"}, cfg.Ignored)
	assert.Equal(t, "module-map.cache.json", cfg.ModuleMapCacheFilename, "unset fields keep the default")
}
