package index_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/chunkstore/chunk"
	"github.com/erigontech/chunkstore/chunkid"
	"github.com/erigontech/chunkstore/entitypath"
	"github.com/erigontech/chunkstore/index"
)

var frame = entitypath.Timeline{Name: "frame", Kind: entitypath.TimelineKindSequence}

func mustChunk(t *testing.T, path string, times []chunk.TimeInt, values []any) *chunk.Chunk {
	t.Helper()
	g := chunkid.NewGenerator()
	rowIDs := make([]chunkid.RowId, len(times))
	for i := range rowIDs {
		rowIDs[i] = g.NewRowId()
	}
	desc := entitypath.ComponentDescriptor{Component: "position"}
	b := chunk.NewBuilder(entitypath.Parse(path)).WithRowIDs(rowIDs...).WithComponent(desc, values)
	if len(times) > 0 {
		b = b.WithTimeline(frame, times)
	}
	c, err := b.Build(g.NewChunkId())
	require.NoError(t, err)
	return c
}

func TestTemporalOverlapping(t *testing.T) {
	idx := index.New()
	c1 := mustChunk(t, "/x", []chunk.TimeInt{0, 10}, []any{"a", "b"})
	c2 := mustChunk(t, "/x", []chunk.TimeInt{20, 30}, []any{"c", "d"})
	idx.Insert(c1)
	idx.Insert(c2)

	got := idx.TemporalOverlapping(entitypath.Parse("/x"), "frame", "position", chunk.TimeRange{Min: 5, Max: 25})
	require.ElementsMatch(t, []chunkid.ChunkId{c1.ID(), c2.ID()}, got)

	got = idx.TemporalOverlapping(entitypath.Parse("/x"), "frame", "position", chunk.TimeRange{Min: 100, Max: 200})
	require.Empty(t, got)
}

func TestRemoveClearsIndices(t *testing.T) {
	idx := index.New()
	c1 := mustChunk(t, "/x", []chunk.TimeInt{0, 10}, []any{"a", "b"})
	idx.Insert(c1)
	require.Equal(t, 1, idx.Len())

	removed, ok := idx.Remove(c1.ID())
	require.True(t, ok)
	require.Equal(t, c1.ID(), removed.ID())
	require.Equal(t, 0, idx.Len())

	got := idx.TemporalOverlapping(entitypath.Parse("/x"), "frame", "position", chunk.TimeRange{Min: 0, Max: 10})
	require.Empty(t, got)
}

// staticChunk builds a single-row static chunk using g, so callers can
// control MaxRowID ordering across chunks sharing an (entity, component).
func staticChunk(t *testing.T, g *chunkid.Generator, path string, value any) *chunk.Chunk {
	t.Helper()
	c, err := chunk.NewBuilder(entitypath.Parse(path)).
		WithRowIDs(g.NewRowId()).
		WithComponent(entitypath.ComponentDescriptor{Component: "position"}, []any{value}).
		Build(g.NewChunkId())
	require.NoError(t, err)
	return c
}

func TestStaticWriteReplacesEarlierWinner(t *testing.T) {
	idx := index.New()
	g := chunkid.NewGenerator()
	c1 := staticChunk(t, g, "/x", "red")
	c2 := staticChunk(t, g, "/x", "blue")

	removed := idx.Insert(c1)
	require.Empty(t, removed)
	removed = idx.Insert(c2)
	require.Len(t, removed, 1)
	require.Equal(t, c1.ID(), removed[0].ID())

	got := idx.StaticChunksFor(entitypath.Parse("/x"), "position")
	require.Equal(t, []chunkid.ChunkId{c2.ID()}, got)

	_, stillPresent := idx.Get(c1.ID())
	require.False(t, stillPresent)
	require.Equal(t, 1, idx.Len())
}

func TestStaticWriteKeepsOlderWinnerOnStaleMaxRowID(t *testing.T) {
	idx := index.New()
	g := chunkid.NewGenerator()
	c1 := staticChunk(t, g, "/x", "red")
	c2 := staticChunk(t, g, "/x", "blue")

	// Insert the newer chunk first, then the older one: the older write
	// must be discarded rather than replacing the current winner.
	removed := idx.Insert(c2)
	require.Empty(t, removed)
	removed = idx.Insert(c1)
	require.Empty(t, removed)

	got := idx.StaticChunksFor(entitypath.Parse("/x"), "position")
	require.Equal(t, []chunkid.ChunkId{c2.ID()}, got)
	// c1 is still tracked in the owning table even though it lost; it's
	// simply unreferenced by the static plane.
	require.Equal(t, 2, idx.Len())
}

func TestAllByRowOrderIsAscending(t *testing.T) {
	idx := index.New()
	c1 := mustChunk(t, "/x", []chunk.TimeInt{0}, []any{"a"})
	c2 := mustChunk(t, "/y", []chunk.TimeInt{0}, []any{"b"})
	idx.Insert(c1)
	idx.Insert(c2)

	order := idx.AllByRowOrder()
	require.Len(t, order, 2)
	want := []chunkid.ChunkId{c1.ID(), c2.ID()}
	if c2.MinRowID().Less(c1.MinRowID()) {
		want = []chunkid.ChunkId{c2.ID(), c1.ID()}
	}
	require.Equal(t, want, order)
}

func TestLatestAtCandidates(t *testing.T) {
	idx := index.New()
	c1 := mustChunk(t, "/x", []chunk.TimeInt{0, 5}, []any{"a", "b"})
	c2 := mustChunk(t, "/x", []chunk.TimeInt{10, 15}, []any{"c", "d"})
	idx.Insert(c1)
	idx.Insert(c2)

	got := idx.LatestAtCandidates(entitypath.Parse("/x"), "frame", "position", 12)
	require.Equal(t, []chunkid.ChunkId{c2.ID()}, got)

	got = idx.LatestAtCandidates(entitypath.Parse("/x"), "frame", "position", 100)
	require.Equal(t, []chunkid.ChunkId{c2.ID()}, got)

	got = idx.LatestAtCandidates(entitypath.Parse("/x"), "frame", "position", -1)
	require.Empty(t, got)
}
