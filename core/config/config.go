package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/watchloom/depgraph/core/logger"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk shape of depgraph.yaml. It supplies the
// construction options a caller would otherwise have to pass in code.
type Config struct {
	CacheDir               string   `yaml:"cache_dir"`
	ModuleMapCacheFilename string   `yaml:"module_map_cache_filename"`
	FileEntryCacheFilename string   `yaml:"file_entry_cache_filename"`
	EntryFiles             []string `yaml:"entry_files"`
	Ignored                []string `yaml:"ignored"`
}

func Default() *Config {
	return &Config{
		CacheDir:               filepath.Join(".depgraph", "cache"),
		ModuleMapCacheFilename: "module-map.cache.json",
		FileEntryCacheFilename: "file-entry.cache.json",
		Ignored:                []string{"**/vendor/**", "**/testdata/**"},
	}
}

// Load reads depgraph.yaml from the current working directory, falling
// back to Default() when no file is present. A missing config file is
// not an error.
func Load() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("cannot determine working dir: %w", err)
	}

	filePath := filepath.Join(wd, "depgraph.yaml")
	if _, err := os.Stat(filePath); err != nil {
		logger.Debug("No config file found at %s, using default config", filePath)
		return Default(), nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	logger.Debug("Config file found: %s", filePath)
	logger.Debug("Config: %+v", cfg)

	return cfg, nil
}
