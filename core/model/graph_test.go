package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// link wires a bidirectional edge directly, bypassing Populator. These
// tests exercise Graph's own invariant-preserving operations in
// isolation, the way the populate package is expected to drive it.
func link(g *Graph, parent, child string) {
	p := g.GetOrCreateNode(parent)
	c := g.GetOrCreateNode(child)
	p.AddChild(child)
	c.AddParent(parent)
	g.Set(parent, p)
	g.Set(child, c)
}

func TestDeleteCascadesToOrphanedChildren(t *testing.T) {
	g := NewGraph("/p", nil)
	link(g, "/p/a.js", "/p/b.js")
	link(g, "/p/b.js", "/p/c.js")

	g.Delete("/p/a.js")

	_, aExists := g.GetNode("/p/a.js")
	_, bExists := g.GetNode("/p/b.js")
	_, cExists := g.GetNode("/p/c.js")
	assert.False(t, aExists)
	assert.False(t, bExists, "b's only parent was a, so it is orphaned and cascaded away")
	assert.False(t, cExists, "c's only parent was b, cascaded transitively")
}

func TestDeleteDoesNotCascadeWhenOtherParentsSurvive(t *testing.T) {
	g := NewGraph("/p", nil)
	link(g, "/p/a.js", "/p/shared.js")
	link(g, "/p/b.js", "/p/shared.js")

	g.Delete("/p/a.js")

	shared, exists := g.GetNode("/p/shared.js")
	require.True(t, exists, "shared still has parent b")
	assert.Equal(t, []string{"/p/b.js"}, shared.Parents())
}

func TestDeleteUnknownFilenameIsNoop(t *testing.T) {
	g := NewGraph("/p", nil)
	assert.NotPanics(t, func() { g.Delete("/p/nowhere.js") })
}

func TestAncestorEntryFilesWalksParentsAndOwnEntryFiles(t *testing.T) {
	g := NewGraph("/p", nil)
	link(g, "/p/a.js", "/p/b.js")
	shared := g.GetOrCreateNode("/p/b.js")
	shared.AddEntryFile("/p/root.js")
	g.Set("/p/b.js", shared)
	g.entryFiles.add("/p/a.js")

	affected := g.AncestorEntryFiles("/p/b.js")

	_, hasRoot := affected["/p/root.js"]
	_, hasA := affected["/p/a.js"]
	assert.True(t, hasRoot, "b's own entryFiles contributes root")
	assert.True(t, hasA, "a is an ancestor via parents and is itself an entry file")
}

func TestAncestorEntryFilesUnknownSeedReturnsEmpty(t *testing.T) {
	g := NewGraph("/p", nil)
	affected := g.AncestorEntryFiles("/p/nowhere.js")
	assert.Empty(t, affected)
}

func TestToSerializedThenLoadRoundTrips(t *testing.T) {
	g := NewGraph("/p", nil)
	link(g, "/p/a.js", "/p/b.js")
	g.entryFiles.add("/p/a.js")

	serialized := g.ToSerialized()

	fresh := NewGraph("/p", nil)
	fresh.Load(serialized, true)

	assert.Equal(t, serialized, fresh.ToSerialized())
}

func TestLoadDestructiveDropsStaleNodes(t *testing.T) {
	g := NewGraph("/p", nil)
	link(g, "/p/a.js", "/p/b.js")
	snapshot := g.ToSerialized()

	g.Set("/x/y.js", NewNode("/x/y.js", nil, nil, nil))
	_, exists := g.GetNode("/x/y.js")
	require.True(t, exists)

	g.Load(snapshot, true)

	_, stillExists := g.GetNode("/x/y.js")
	assert.False(t, stillExists, "destructive load treats the on-disk snapshot as authoritative")
}

func TestLoadNonDestructiveKeepsUntouchedNodes(t *testing.T) {
	g := NewGraph("/p", nil)
	link(g, "/p/a.js", "/p/b.js")
	snapshot := g.ToSerialized()

	g.Set("/x/y.js", NewNode("/x/y.js", nil, nil, nil))
	g.Load(snapshot, false)

	_, exists := g.GetNode("/x/y.js")
	assert.True(t, exists, "non-destructive load merges instead of clearing")
}

func TestAddEntryFileCreatesNodeForUnknownPath(t *testing.T) {
	g := NewGraph("/p", nil)
	err := g.AddEntryFile("/p/new.js")
	require.NoError(t, err)

	assert.True(t, g.IsEntryFile("/p/new.js"))
	_, exists := g.GetNode("/p/new.js")
	assert.True(t, exists)
}
