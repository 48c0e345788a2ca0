// Package snapshot implements the default file-change detector: a
// size/mtime/content-hash snapshot of every tracked path, persisted as
// JSON. It is the concrete backing store behind core/cache's ChangeCache
// adapter, built around a snapshot-then-reconcile lifecycle instead of a
// get/set API, since the core only ever asks it "did X change".
package snapshot

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/watchloom/depgraph/core/logger"
)

// Entry is one tracked path's last-reconciled fingerprint.
type Entry struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
	Hash    string    `json:"hash"`
}

// matches reports whether path's current on-disk state still agrees
// with this entry, computing a content hash only when size or modtime
// disagree, avoiding a hash computation on every call.
func (e Entry) matches(stat os.FileInfo) (bool, error) {
	if stat.Size() == e.Size && stat.ModTime().Equal(e.ModTime) {
		return true, nil
	}
	hash, err := hashFile(e.Path)
	if err != nil {
		return false, err
	}
	return hash == e.Hash, nil
}

// Store is a mutable snapshot of tracked-path fingerprints, loadable
// from and persistable to a JSON file. Each method holds an internal
// mutex for its own duration, so individual calls may come from
// different goroutines; a sequence of calls is not atomic.
type Store struct {
	path    string
	entries map[string]Entry
	mu      sync.Mutex
}

// Open loads a Store from path. A missing file yields an empty store
// rather than an error, per the cold-start failure policy.
func Open(path string) (*Store, error) {
	s := &Store{path: path, entries: make(map[string]Entry)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("snapshot: no cache file at %s, starting cold", path)
			return s, nil
		}
		return nil, err
	}

	var records []Entry
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	for _, e := range records {
		s.entries[e.Path] = e
	}
	return s, nil
}

// HasChanged reports whether path differs from its last-reconciled
// snapshot. An untracked path, or one that no longer stats cleanly, is
// reported as changed: a missing-file stat error means "assume it
// needs re-examination" rather than "nothing to do".
func (s *Store) HasChanged(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, tracked := s.entries[path]
	if !tracked {
		return true
	}

	stat, err := os.Stat(path)
	if err != nil {
		return true
	}

	ok, err := entry.matches(stat)
	if err != nil {
		return true
	}
	return !ok
}

// UpdatedAmong returns the subset of paths that HasChanged reports as
// changed, preserving sorted order for deterministic output.
func (s *Store) UpdatedAmong(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if s.HasChanged(p) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// RemoveEntry forgets path's snapshot, so the next HasChanged/UpdatedAmong
// call treats it as changed regardless of its actual on-disk state.
func (s *Store) RemoveEntry(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, path)
}

// Reconcile recomputes the fingerprint for every path currently tracked
// plus any path passed in tracked, committing on-disk state as the new
// baseline. Paths that no longer exist are dropped from the snapshot
// rather than retried forever.
func (s *Store) Reconcile(tracked []string, persist bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make(map[string]struct{}, len(s.entries)+len(tracked))
	for p := range s.entries {
		all[p] = struct{}{}
	}
	for _, p := range tracked {
		all[p] = struct{}{}
	}

	fresh := make(map[string]Entry, len(all))
	for p := range all {
		stat, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("snapshot: stat %s: %w", p, err)
		}
		hash, err := hashFile(p)
		if err != nil {
			return fmt.Errorf("snapshot: hash %s: %w", p, err)
		}
		fresh[p] = Entry{Path: p, Size: stat.Size(), ModTime: stat.ModTime(), Hash: hash}
	}
	s.entries = fresh

	if persist {
		return s.save()
	}
	return nil
}

// Destroy drops every tracked entry and removes the backing file.
func (s *Store) Destroy() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]Entry)
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	logger.Debug("snapshot: destroyed %s", s.path)
	return nil
}

func (s *Store) save() error {
	records := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		records = append(records, e)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
