// Package depgraph is the top-level facade a test-runner driver embeds:
// it wires Graph, Populator, GraphCache and ChangeCache together behind
// a one-shot Initialize and a repeatable AffectedEntryFiles query. The
// wiring pattern, a facade owning a state enum and constructing its
// collaborators from an Options struct rather than exposing
// constructors for each piece separately, mirrors how the cmd package
// builds a single cobra command tree from flag-populated options
// instead of scattering construction across call sites.
package depgraph

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/watchloom/depgraph/core/cache"
	"github.com/watchloom/depgraph/core/extract"
	"github.com/watchloom/depgraph/core/logger"
	"github.com/watchloom/depgraph/core/model"
	"github.com/watchloom/depgraph/core/populate"
)

type state int

const (
	stateUninitialized state = iota
	stateInitializing
	stateReady
)

// GraphCache is the contract DependencyGraph needs from a graph
// persistence adapter; *cache.GraphCache satisfies it.
type GraphCache interface {
	All() map[string]model.SerializedNode
	SetKey(filename string, record model.SerializedNode)
	Save(persistAll bool) error
	Destroy() error
}

// ChangeCache is the contract DependencyGraph needs from a
// change-detection adapter; *cache.ChangeCache satisfies it. It embeds
// populate.ChangeCache so the same value can be handed straight to a
// Populator.
type ChangeCache interface {
	populate.ChangeCache
	UpdatedAmong(paths []string) []string
	RemoveEntry(path string)
	Reconcile(tracked []string, persist bool) error
	Destroy() error
}

// Options configures a DependencyGraph. Every field has a working
// default except EntryFiles, which callers are expected to supply.
type Options struct {
	ModuleMapCacheFilename string
	FileEntryCacheFilename string
	CacheDir               string
	Reset                  bool
	EntryFiles             []string
	Ignored                []string
	Cwd                    string

	// ModulePath overrides the Go module path used to resolve local
	// imports when Extractor is left nil. Detected from go.mod under Cwd
	// when empty.
	ModulePath string

	// Extractor and ChangeDetector override the default Go-source
	// extractor and file-snapshot change cache, for callers embedding a
	// language other than Go or injecting a fake for tests.
	Extractor      populate.Extractor
	ChangeDetector ChangeCache
}

func (o *Options) fillDefaults() error {
	if o.Cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		o.Cwd = wd
	}
	if o.CacheDir == "" {
		o.CacheDir = filepath.Join(".depgraph", "cache")
	}
	if o.ModuleMapCacheFilename == "" {
		o.ModuleMapCacheFilename = "module-map.cache.json"
	}
	if o.FileEntryCacheFilename == "" {
		o.FileEntryCacheFilename = "file-entry.cache.json"
	}
	if o.ModulePath == "" {
		if mp, err := readModulePath(o.Cwd); err == nil {
			o.ModulePath = mp
		}
	}
	return nil
}

// DependencyGraph is the facade: one model.Graph plus the two caches
// and the Populator wired to drive it.
type DependencyGraph struct {
	opts Options

	graph       *model.Graph
	populator   *populate.Populator
	graphCache  GraphCache
	changeCache ChangeCache

	state state
}

// New constructs an uninitialized DependencyGraph. Call Initialize
// before using it.
func New(opts Options) (*DependencyGraph, error) {
	if err := opts.fillDefaults(); err != nil {
		return nil, err
	}

	dg := &DependencyGraph{opts: opts, state: stateUninitialized}
	return dg, nil
}

// Initialize runs its fixed one-shot sequence exactly once: reset
// caches if requested, load from GraphCache destructively, ensure
// every declared entry file has a node, determine the changed-among-known
// set, populate the union of changed-known and newly-added entry nodes
// with force=true, then save. Re-entry returns model.ErrAlreadyInitialized.
func (dg *DependencyGraph) Initialize() error {
	if dg.state != stateUninitialized {
		return model.ErrAlreadyInitialized
	}
	dg.state = stateInitializing

	graphCachePath := filepath.Join(dg.opts.Cwd, dg.opts.CacheDir, dg.opts.ModuleMapCacheFilename)
	changeCachePath := filepath.Join(dg.opts.Cwd, dg.opts.CacheDir, dg.opts.FileEntryCacheFilename)

	graphCache, err := cache.OpenGraphCache(graphCachePath)
	if err != nil {
		return err
	}
	dg.graphCache = graphCache

	if dg.opts.ChangeDetector != nil {
		dg.changeCache = dg.opts.ChangeDetector
	} else {
		changeCache, err := cache.OpenChangeCache(changeCachePath)
		if err != nil {
			return err
		}
		dg.changeCache = changeCache
	}

	if dg.opts.Reset {
		if err := dg.graphCache.Destroy(); err != nil {
			return err
		}
		if err := dg.changeCache.Destroy(); err != nil {
			return err
		}
		logger.Debug("depgraph: reset requested, caches destroyed")
	}

	extractor := dg.opts.Extractor
	if extractor == nil {
		extractor = extract.NewGoExtractor(dg.opts.ModulePath, dg.opts.Cwd, dg.opts.Ignored)
	}

	dg.graph = model.NewGraph(dg.opts.Cwd, dg.opts.Ignored)
	dg.populator = populate.New(dg.graph, dg.changeCache, extractor)

	records := make([]model.SerializedNode, 0, len(dg.graphCache.All()))
	for _, rec := range dg.graphCache.All() {
		records = append(records, rec)
	}
	dg.graph.Load(records, true)

	// Register every declared entry file without yet wiring graph.Populate.
	// Initialize runs its own single batched, force=true populate below
	// over the union of changed-known and newly-added nodes, rather than
	// letting AddEntryFile trigger a separate force=false populate per
	// entry as it would once the hook is live.
	var newEntryNodes []*model.Node
	for _, raw := range dg.opts.EntryFiles {
		abs, err := dg.graph.Resolve(raw)
		if err != nil {
			return &model.InvalidPathError{Path: raw, Err: err}
		}

		_, existed := dg.graph.GetNode(abs)
		if err := dg.graph.AddEntryFile(abs); err != nil {
			return err
		}

		if !existed {
			newEntryNodes = append(newEntryNodes, dg.graph.GetOrCreateNode(abs))
		}
	}

	dg.graph.Populate = dg.populator.Populate

	changedKnown := dg.changeCache.UpdatedAmong(dg.graph.Files())
	var changedNodes []*model.Node
	for _, f := range changedKnown {
		changedNodes = append(changedNodes, dg.graph.GetOrCreateNode(f))
	}

	seed := mergeNodes(changedNodes, newEntryNodes)
	if err := dg.populator.Populate(seed, true); err != nil {
		return err
	}

	if err := dg.save(); err != nil {
		return err
	}

	dg.state = stateReady
	logger.Info("depgraph: initialized with %d entry files, %d known files", len(dg.graph.EntryFiles()), len(dg.graph.Files()))
	return nil
}

// AffectedEntryFiles computes the entry files affected by a set of
// changed source files. changedFiles is the known change-set (if
// empty, it is derived from ChangeCache.UpdatedAmong);
// markChanged are additionally force-invalidated in the ChangeCache
// before the query runs. Returns the full affected set and its
// intersection with the graph's entry files (the latter is the primary
// answer).
func (dg *DependencyGraph) AffectedEntryFiles(changedFiles, markChanged []string) (allAffected, affectedEntries []string, err error) {
	for _, path := range markChanged {
		abs, rerr := dg.graph.Resolve(path)
		if rerr != nil {
			return nil, nil, &model.InvalidPathError{Path: path, Err: rerr}
		}
		dg.changeCache.RemoveEntry(abs)
	}

	changeSet := changedFiles
	if len(changeSet) == 0 {
		changeSet = dg.changeCache.UpdatedAmong(dg.graph.Files())
	}
	if len(changeSet) == 0 {
		return nil, nil, nil
	}

	var seedNodes []*model.Node
	var seedNames []string
	for _, raw := range changeSet {
		abs, rerr := dg.graph.Resolve(raw)
		if rerr != nil {
			return nil, nil, &model.InvalidPathError{Path: raw, Err: rerr}
		}
		node, ok := dg.graph.GetNode(abs)
		if !ok {
			continue
		}
		seedNodes = append(seedNodes, node)
		seedNames = append(seedNames, abs)
	}

	if err := dg.populator.Populate(seedNodes, false); err != nil {
		return nil, nil, err
	}

	affected := make(map[string]struct{})
	for _, seed := range seedNames {
		for f := range dg.graph.AncestorEntryFiles(seed) {
			affected[f] = struct{}{}
		}
	}

	entrySet := make(map[string]struct{}, len(dg.graph.EntryFiles()))
	for _, ef := range dg.graph.EntryFiles() {
		entrySet[ef] = struct{}{}
	}

	for f := range affected {
		allAffected = append(allAffected, f)
		if _, isEntry := entrySet[f]; isEntry {
			affectedEntries = append(affectedEntries, f)
		}
	}

	return allAffected, affectedEntries, nil
}

// Save persists both the graph and the change-cache reconciliation
// baseline to disk, for a driver that wants to checkpoint mid-session
// rather than only at process exit.
func (dg *DependencyGraph) Save() error {
	return dg.save()
}

func (dg *DependencyGraph) save() error {
	for _, rec := range dg.graph.ToSerialized() {
		dg.graphCache.SetKey(rec.Filename, rec)
	}
	if err := dg.graphCache.Save(true); err != nil {
		return err
	}
	if err := dg.changeCache.Reconcile(dg.graph.Files(), true); err != nil {
		return err
	}
	return nil
}

// Graph exposes the underlying model.Graph for read-only inspection
// (e.g. a watch-mode driver listing known files).
func (dg *DependencyGraph) Graph() *model.Graph {
	return dg.graph
}

func mergeNodes(groups ...[]*model.Node) []*model.Node {
	seen := make(map[string]struct{})
	var out []*model.Node
	for _, group := range groups {
		for _, n := range group {
			if _, ok := seen[n.Filename]; ok {
				continue
			}
			seen[n.Filename] = struct{}{}
			out = append(out, n)
		}
	}
	return out
}

func readModulePath(cwd string) (string, error) {
	f, err := os.Open(filepath.Join(cwd, "go.mod"))
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "module ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "module")), nil
		}
	}
	return "", fmt.Errorf("depgraph: no module directive found in go.mod")
}
