package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNodeSortsRelationships(t *testing.T) {
	n := NewNode("/p/a.js", []string{"/p/c.js", "/p/b.js"}, nil, nil)
	assert.Equal(t, []string{"/p/b.js", "/p/c.js"}, n.Children())
}

func TestAddEntryFileExcludesSelf(t *testing.T) {
	n := NewNode("/p/a.js", nil, nil, nil)
	n.AddEntryFile("/p/a.js")
	assert.Empty(t, n.EntryFiles(), "a node never lists itself as its own entry file")

	n.AddEntryFile("/p/root.js")
	assert.Equal(t, []string{"/p/root.js"}, n.EntryFiles())
}

func TestNodeEqualByFilenameOnly(t *testing.T) {
	a := NewNode("/p/a.js", []string{"/p/x.js"}, nil, nil)
	b := NewNode("/p/a.js", nil, nil, nil)
	assert.True(t, a.Equal(b))

	c := NewNode("/p/c.js", nil, nil, nil)
	assert.False(t, a.Equal(c))
}

func TestSerializeRoundTrip(t *testing.T) {
	n := NewNode("/p/a.js", []string{"/p/b.js"}, []string{"/p/root.js"}, []string{"/p/root.js"})
	serialized := n.Serialize()

	rebuilt := FromSerialized(serialized)
	require.True(t, n.Equal(rebuilt))
	assert.Equal(t, n.Children(), rebuilt.Children())
	assert.Equal(t, n.Parents(), rebuilt.Parents())
	assert.Equal(t, n.EntryFiles(), rebuilt.EntryFiles())
}

func TestNumParentsAndHasChild(t *testing.T) {
	n := NewNode("/p/a.js", []string{"/p/b.js"}, []string{"/p/x.js", "/p/y.js"}, nil)
	assert.Equal(t, 2, n.NumParents())
	assert.True(t, n.HasChild("/p/b.js"))
	assert.False(t, n.HasChild("/p/z.js"))

	n.RemoveParent("/p/x.js")
	assert.Equal(t, 1, n.NumParents())
}
