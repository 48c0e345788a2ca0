// Package cache provides the two persistence adapters the core depends
// on: GraphCache for the serialized dependency graph and ChangeCache for
// the file-change-detection snapshot. Both are thin wrappers with no
// TTL or eviction machinery: a dependency graph's cache has exactly one
// active generation, not a rolling working set.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/watchloom/depgraph/core/logger"
	"github.com/watchloom/depgraph/core/model"
)

// GraphCache persists a model.Graph's serialized nodes to a single JSON
// file keyed by absolute filename.
type GraphCache struct {
	path    string
	records map[string]model.SerializedNode
}

// OpenGraphCache loads path if present; a missing file is a cold start,
// not an error.
func OpenGraphCache(path string) (*GraphCache, error) {
	gc := &GraphCache{path: path, records: make(map[string]model.SerializedNode)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("GraphCache: no cache file at %s, starting cold", path)
			return gc, nil
		}
		return nil, &model.CacheIOFailureError{Path: path, Err: err}
	}

	if err := json.Unmarshal(data, &gc.records); err != nil {
		return nil, &model.CacheIOFailureError{Path: path, Err: err}
	}
	return gc, nil
}

// All returns every cached record, keyed by filename.
func (gc *GraphCache) All() map[string]model.SerializedNode {
	return gc.records
}

// SetKey installs or replaces a single record.
func (gc *GraphCache) SetKey(filename string, record model.SerializedNode) {
	gc.records[filename] = record
}

// Save writes the current record set to disk. When persistAll is false
// the call is still a full rewrite, since this cache has no incremental
// append format, but the flag is kept so callers can distinguish a full
// resync from an opportunistic flush in their own logging.
func (gc *GraphCache) Save(persistAll bool) error {
	_ = persistAll

	ordered := make([]model.SerializedNode, 0, len(gc.records))
	for _, rec := range gc.records {
		ordered = append(ordered, rec)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Filename < ordered[j].Filename })

	out := make(map[string]model.SerializedNode, len(ordered))
	for _, rec := range ordered {
		out[rec.Filename] = rec
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return &model.CacheIOFailureError{Path: gc.path, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(gc.path), 0o755); err != nil {
		return &model.CacheIOFailureError{Path: gc.path, Err: err}
	}
	if err := os.WriteFile(gc.path, data, 0o644); err != nil {
		return &model.CacheIOFailureError{Path: gc.path, Err: err}
	}
	logger.Debug("GraphCache: saved %d records to %s", len(gc.records), gc.path)
	return nil
}

// Destroy clears the in-memory records and removes the backing file.
func (gc *GraphCache) Destroy() error {
	gc.records = make(map[string]model.SerializedNode)
	if err := os.Remove(gc.path); err != nil && !os.IsNotExist(err) {
		return &model.CacheIOFailureError{Path: gc.path, Err: err}
	}
	logger.Debug("GraphCache: destroyed %s", gc.path)
	return nil
}
