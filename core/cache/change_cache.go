package cache

import (
	"github.com/watchloom/depgraph/core/logger"
	"github.com/watchloom/depgraph/core/model"
	"github.com/watchloom/depgraph/core/snapshot"
)

// ChangeCache adapts a snapshot.Store to the change-detection contract
// the core consumes: hasChanged, updatedAmong, removeEntry, reconcile,
// destroy. Populator only needs HasChanged (see populate.ChangeCache);
// the rest is consumed by core/depgraph's facade.
type ChangeCache struct {
	store *snapshot.Store
	path  string
}

// OpenChangeCache loads path via snapshot.Open.
func OpenChangeCache(path string) (*ChangeCache, error) {
	store, err := snapshot.Open(path)
	if err != nil {
		return nil, &model.CacheIOFailureError{Path: path, Err: err}
	}
	return &ChangeCache{store: store, path: path}, nil
}

// HasChanged satisfies populate.ChangeCache.
func (cc *ChangeCache) HasChanged(path string) bool {
	return cc.store.HasChanged(path)
}

// UpdatedAmong returns the subset of paths whose content differs from
// the last reconciled snapshot.
func (cc *ChangeCache) UpdatedAmong(paths []string) []string {
	return cc.store.UpdatedAmong(paths)
}

// RemoveEntry forgets path's snapshot so the next query treats it as
// changed, used to force-mark a path dirty.
func (cc *ChangeCache) RemoveEntry(path string) {
	cc.store.RemoveEntry(path)
	logger.Debug("ChangeCache: forced %s to dirty", path)
}

// Reconcile commits current on-disk state for tracked as the new
// baseline, optionally flushing to disk.
func (cc *ChangeCache) Reconcile(tracked []string, persist bool) error {
	if err := cc.store.Reconcile(tracked, persist); err != nil {
		return &model.CacheIOFailureError{Path: cc.path, Err: err}
	}
	return nil
}

// Destroy clears the snapshot and removes its backing file.
func (cc *ChangeCache) Destroy() error {
	if err := cc.store.Destroy(); err != nil {
		return &model.CacheIOFailureError{Path: cc.path, Err: err}
	}
	return nil
}
