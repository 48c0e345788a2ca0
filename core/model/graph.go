package model

import (
	"path/filepath"
	"sort"

	"github.com/watchloom/depgraph/core/logger"
)

// Graph is the in-memory bidirectional dependency graph keyed by
// absolute file path. It owns the node mapping and enforces the
// bidirectional-edge and entry-file invariants on every mutation it
// performs directly (Set and AddEntryFile skip the back-edge
// bookkeeping that only the caller, Populator, has enough context to
// get right; see their doc comments).
type Graph struct {
	nodes      map[string]*Node
	entryFiles stringSet
	Ignored    []string
	Cwd        string

	// Populate, when set, is invoked by AddEntryFile for a freshly
	// created node so a mid-session entry-file addition is fully wired
	// into the graph instead of left as a bare stub. It is injected
	// rather than imported to avoid a model<->populate import cycle;
	// core/depgraph wires it to the real Populator.
	Populate func(start []*Node, force bool) error
}

// NewGraph creates an empty graph anchored at cwd.
func NewGraph(cwd string, ignored []string) *Graph {
	return &Graph{
		nodes:      make(map[string]*Node),
		entryFiles: make(stringSet),
		Ignored:    ignored,
		Cwd:        cwd,
	}
}

// Resolve makes path absolute against the graph's cwd, cleaning the
// result so equal logical paths always compare equal as map keys.
func (g *Graph) Resolve(path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	abs, err := filepath.Abs(filepath.Join(g.Cwd, path))
	if err != nil {
		return "", err
	}
	return abs, nil
}

// GetNode looks up a node by absolute filename.
func (g *Graph) GetNode(filename string) (*Node, bool) {
	n, ok := g.nodes[filename]
	return n, ok
}

// GetOrCreateNode returns the existing node for filename, or installs
// and returns a fresh empty one.
func (g *Graph) GetOrCreateNode(filename string) *Node {
	if n, ok := g.nodes[filename]; ok {
		return n
	}
	n := NewNode(filename, nil, nil, nil)
	g.nodes[filename] = n
	return n
}

// Set inserts or replaces a node outright. It does NOT synchronize
// parent/child back-edges on adjacent nodes: bidirectional-edge
// consistency is the caller's responsibility here, because only the
// caller (Populator, during traversal) knows the full set of edges it
// is in the middle of adding. This is a deliberately low-level escape
// hatch; most code should go through Populator or AddEntryFile instead.
func (g *Graph) Set(filename string, node *Node) {
	g.nodes[filename] = node
}

// EntryFiles returns the set of entry-file paths, sorted.
func (g *Graph) EntryFiles() []string {
	return g.entryFiles.sorted()
}

// IsEntryFile reports whether filename is a designated entry file.
func (g *Graph) IsEntryFile(filename string) bool {
	return g.entryFiles.has(filename)
}

// Files returns every filename known to the graph, sorted.
func (g *Graph) Files() []string {
	out := make([]string, 0, len(g.nodes))
	for f := range g.nodes {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// AddEntryFile resolves filename to absolute and registers it as an
// entry file (invariant 3). If no node exists yet, one is created and,
// when a Populate hook is wired, immediately populated so the new root
// is fully connected rather than left dangling. If a node already
// exists, only the entryFiles membership changes.
func (g *Graph) AddEntryFile(filename string) error {
	abs, err := g.Resolve(filename)
	if err != nil {
		return &InvalidPathError{Path: filename, Err: err}
	}

	g.entryFiles.add(abs)

	if _, exists := g.nodes[abs]; exists {
		return nil
	}

	node := g.GetOrCreateNode(abs)
	logger.Debug("Graph: created node for new entry file %s", abs)

	if g.Populate != nil {
		if err := g.Populate([]*Node{node}, false); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes filename from the graph, cascading: children whose
// only parent was filename are recursively removed too (they have
// become unreachable). Deleting a filename not present is a no-op.
func (g *Graph) Delete(filename string) {
	node, exists := g.nodes[filename]
	if !exists {
		return
	}

	for _, child := range node.Children() {
		if childNode, ok := g.nodes[child]; ok {
			childNode.RemoveParent(filename)
			if childNode.NumParents() == 0 {
				g.Delete(child)
			}
		}
	}

	for _, parent := range node.Parents() {
		if parentNode, ok := g.nodes[parent]; ok {
			parentNode.RemoveChild(filename)
		}
	}

	delete(g.nodes, filename)
	g.entryFiles.remove(filename)
	logger.Debug("Graph: deleted node %s", filename)
}

// ToSerialized produces the deterministic, comparable form of the whole
// graph: every node serialized and sorted by filename.
func (g *Graph) ToSerialized() []SerializedNode {
	out := make([]SerializedNode, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n.Serialize())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Filename < out[j].Filename })
	return out
}

// Load installs nodes from previously-serialized records. Records are
// trusted to be internally consistent (they were produced by a prior
// ToSerialized/save), so no invariant check is run here. When
// destructive is true the in-memory graph is cleared first; otherwise
// existing nodes are overwritten by same-filename records from the
// snapshot and nodes absent from records are left untouched.
func (g *Graph) Load(records []SerializedNode, destructive bool) {
	if destructive {
		g.nodes = make(map[string]*Node)
	}
	for _, rec := range records {
		g.nodes[rec.Filename] = FromSerialized(rec)
	}
}

// AncestorEntryFiles computes, for a single already-known seed node,
// the union of its own entryFiles, itself (if it is an entry file), and
// every ancestor reachable via parents. The walk is an iterative DFS
// with a visited set scoped to this single call.
func (g *Graph) AncestorEntryFiles(seed string) map[string]struct{} {
	affected := make(map[string]struct{})

	node, ok := g.nodes[seed]
	if !ok {
		return affected
	}

	for _, ef := range node.EntryFiles() {
		affected[ef] = struct{}{}
	}
	if g.entryFiles.has(seed) {
		affected[seed] = struct{}{}
	}

	visited := map[string]bool{seed: true}
	stack := []string{seed}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		curNode, ok := g.nodes[cur]
		if !ok {
			continue
		}
		for _, parent := range curNode.Parents() {
			affected[parent] = struct{}{}
			if !visited[parent] {
				visited[parent] = true
				stack = append(stack, parent)
			}
		}
	}

	return affected
}
