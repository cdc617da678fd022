package entitypath_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/chunkstore/entitypath"
)

func TestRoot(t *testing.T) {
	require.True(t, entitypath.Root().IsRoot())
	require.Equal(t, "/", entitypath.Root().String())
}

func TestParseRoundTrip(t *testing.T) {
	p := entitypath.Parse("/a/b/c")
	require.Equal(t, []string{"a", "b", "c"}, p.Parts())
	require.Equal(t, "/a/b/c", p.String())
}

func TestIsDescendantOf(t *testing.T) {
	root := entitypath.Root()
	a := entitypath.Parse("/a")
	ab := entitypath.Parse("/a/b")
	abc := entitypath.Parse("/a/b/c")
	other := entitypath.Parse("/x")

	require.True(t, abc.IsDescendantOf(root))
	require.True(t, abc.IsDescendantOf(a))
	require.True(t, abc.IsDescendantOf(ab))
	require.True(t, abc.IsDescendantOf(abc))
	require.False(t, ab.IsDescendantOf(abc))
	require.False(t, abc.IsDescendantOf(other))
}

func TestAncestors(t *testing.T) {
	abc := entitypath.Parse("/a/b/c")
	ancestors := abc.Ancestors()
	require.Len(t, ancestors, 4)
	require.Equal(t, "/", ancestors[0].String())
	require.Equal(t, "/a", ancestors[1].String())
	require.Equal(t, "/a/b", ancestors[2].String())
	require.Equal(t, "/a/b/c", ancestors[3].String())
}

func TestChildAndParent(t *testing.T) {
	a := entitypath.Parse("/a")
	ab := a.Child("b")
	require.Equal(t, "/a/b", ab.String())

	parent, ok := ab.Parent()
	require.True(t, ok)
	require.Equal(t, a.String(), parent.String())

	_, ok = entitypath.Root().Parent()
	require.False(t, ok)
}
