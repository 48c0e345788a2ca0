// Package populate implements the incremental graph-construction
// algorithm that drives a model.Graph from a ChangeCache verdict and a
// pluggable dependency Extractor.
package populate

import (
	"github.com/watchloom/depgraph/core/logger"
	"github.com/watchloom/depgraph/core/model"
)

// ChangeCache is the narrow contract Populator needs from the
// file-change-detection cache: a pure query of whether a path's
// on-disk content differs from the last reconciled snapshot.
type ChangeCache interface {
	HasChanged(path string) bool
}

// Extractor resolves a single source file's direct local-import paths.
// Implementations must be pure with respect to disk contents at call
// time; errors propagate as a fatal failure for the node being visited.
type Extractor interface {
	Extract(filename, cwd string) ([]string, error)
}

// Populator walks a frontier of nodes, asking ChangeCache whether each
// one's content changed and, if so, re-extracting its dependencies via
// Extractor, mutating Graph as it goes.
type Populator struct {
	Graph     *model.Graph
	Changes   ChangeCache
	Extractor Extractor
}

func New(graph *model.Graph, changes ChangeCache, extractor Extractor) *Populator {
	return &Populator{Graph: graph, Changes: changes, Extractor: extractor}
}

type frontierEntry struct {
	node        *model.Node
	entryAnchor string
	hasAnchor   bool
}

// Populate runs an iterative DFS over start and everything reachable
// from it, with force controlling whether
// every visited node is re-extracted regardless of ChangeCache's
// verdict. A single seen-set spans the whole call so cycles terminate
// and diamonds are expanded at most once.
func (p *Populator) Populate(start []*model.Node, force bool) error {
	seen := make(map[string]bool, len(start))
	stack := make([]frontierEntry, 0, len(start))

	for _, n := range start {
		entry := frontierEntry{node: n}
		if p.Graph.IsEntryFile(n.Filename) {
			entry.entryAnchor = n.Filename
			entry.hasAnchor = true
		}
		stack = append(stack, entry)
		seen[n.Filename] = true
	}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := cur.node

		if force || p.Changes.HasChanged(node.Filename) {
			children, err := p.extract(node)
			if err != nil {
				return err
			}
			p.replaceChildren(node, children)
		}

		for _, child := range node.Children() {
			childNode := p.Graph.GetOrCreateNode(child)

			if cur.hasAnchor {
				childNode.AddEntryFile(cur.entryAnchor)
			}
			childNode.AddParent(node.Filename)
			p.Graph.Set(child, childNode)

			if !seen[child] {
				seen[child] = true
				stack = append(stack, frontierEntry{
					node:        childNode,
					entryAnchor: cur.entryAnchor,
					hasAnchor:   cur.hasAnchor,
				})
			}
		}
	}

	return nil
}

func (p *Populator) extract(node *model.Node) ([]string, error) {
	raw, err := p.Extractor.Extract(node.Filename, p.Graph.Cwd)
	if err != nil {
		return nil, &model.ExtractorFailureError{FilePath: node.Filename, Err: err}
	}

	children := make([]string, 0, len(raw))
	for _, path := range raw {
		if path == "" {
			continue
		}
		children = append(children, path)
	}

	logger.Debug("Populator: extracted %d children for %s", len(children), node.Filename)
	return children, nil
}

// replaceChildren installs the freshly extracted children onto node,
// dropping the back-edge from any child that is no longer depended on.
// A removed child never gets revisited by Populate, so this is the only
// place invariant 1 gets restored after a re-extraction drops an edge.
func (p *Populator) replaceChildren(node *model.Node, newChildren []string) {
	newSet := make(map[string]struct{}, len(newChildren))
	for _, c := range newChildren {
		newSet[c] = struct{}{}
	}

	for _, old := range node.Children() {
		if _, still := newSet[old]; still {
			continue
		}
		if oldNode, ok := p.Graph.GetNode(old); ok {
			oldNode.RemoveParent(node.Filename)
			if oldNode.NumParents() == 0 && !p.Graph.IsEntryFile(old) {
				p.Graph.Delete(old)
			}
		}
	}

	node.SetChildren(newChildren)
}
