package chunk_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/chunkstore/chunk"
	"github.com/erigontech/chunkstore/chunkid"
	"github.com/erigontech/chunkstore/entitypath"
)

var frame = entitypath.Timeline{Name: "frame", Kind: entitypath.TimelineKindSequence}

func buildChunk(t *testing.T, times []chunk.TimeInt, values []any) *chunk.Chunk {
	t.Helper()
	g := chunkid.NewGenerator()
	rowIDs := make([]chunkid.RowId, len(times))
	for i := range rowIDs {
		rowIDs[i] = g.NewRowId()
	}
	desc := entitypath.ComponentDescriptor{Component: "position"}
	c, err := chunk.NewBuilder(entitypath.Parse("/x")).
		WithRowIDs(rowIDs...).
		WithTimeline(frame, times).
		WithComponent(desc, values).
		Build(g.NewChunkId())
	require.NoError(t, err)
	return c
}

func TestChunkBasics(t *testing.T) {
	c := buildChunk(t, []chunk.TimeInt{10, 20, 15}, []any{"a", "b", "c"})
	require.Equal(t, 3, c.NumRows())
	require.False(t, c.IsStatic())
	require.Equal(t, 3, c.NumEventsForComponent("position"))

	tc, ok := c.TimeColumn("frame")
	require.True(t, ok)
	require.Equal(t, chunk.TimeRange{Min: 10, Max: 20}, tc.TimeRange())
	require.False(t, tc.IsSorted())
}

func TestChunkRejectsDuplicateRowIDs(t *testing.T) {
	g := chunkid.NewGenerator()
	id := g.NewRowId()
	_, err := chunk.NewBuilder(entitypath.Parse("/x")).
		WithRowIDs(id, id).
		WithTimeline(frame, []chunk.TimeInt{1, 2}).
		Build(g.NewChunkId())
	require.ErrorIs(t, err, chunk.ErrBadChunk)
}

func TestChunkRejectsMismatchedColumnLength(t *testing.T) {
	g := chunkid.NewGenerator()
	_, err := chunk.NewBuilder(entitypath.Parse("/x")).
		WithRowIDs(g.NewRowId(), g.NewRowId()).
		WithTimeline(frame, []chunk.TimeInt{1}).
		Build(g.NewChunkId())
	require.ErrorIs(t, err, chunk.ErrBadChunk)
}

func TestStaticChunkHasNoTimelines(t *testing.T) {
	g := chunkid.NewGenerator()
	c, err := chunk.NewBuilder(entitypath.Parse("/x")).
		WithRowIDs(g.NewRowId()).
		WithComponent(entitypath.ComponentDescriptor{Component: "color"}, []any{"red"}).
		Build(g.NewChunkId())
	require.NoError(t, err)
	require.True(t, c.IsStatic())
}

func TestNumEventsCumulativePerUniqueTime(t *testing.T) {
	c := buildChunk(t, []chunk.TimeInt{10, 10, 20}, []any{"a", "b", "c"})
	counts, ok := c.NumEventsCumulativePerUniqueTime("frame")
	require.True(t, ok)
	require.Equal(t, []chunk.TimeCount{{Time: 10, Count: 2}, {Time: 20, Count: 3}}, counts)
}

func TestSortedByRowID(t *testing.T) {
	g := chunkid.NewGenerator()
	r0, r1, r2 := g.NewRowId(), g.NewRowId(), g.NewRowId()
	c, err := chunk.NewBuilder(entitypath.Parse("/x")).
		WithRowIDs(r2, r0, r1).
		WithTimeline(frame, []chunk.TimeInt{30, 10, 20}).
		WithComponent(entitypath.ComponentDescriptor{Component: "position"}, []any{"a", "b", "c"}).
		Build(g.NewChunkId())
	require.NoError(t, err)
	require.False(t, c.IsSortedByRowID())
	sorted := chunk.SortedByRowID(c)
	require.True(t, sorted.IsSortedByRowID())
	require.Equal(t, c.NumRows(), sorted.NumRows())
}

func TestFullSliceAndStats(t *testing.T) {
	c := buildChunk(t, []chunk.TimeInt{1, 2}, []any{"a", nil})
	s := chunk.FullSlice(c)
	require.Equal(t, 2, s.NumRows())
	v, ok := s.Component("position", 1)
	require.Nil(t, v)
	require.False(t, ok)

	stats := chunk.FromChunk(c)
	require.Equal(t, uint64(1), stats.NumChunks)
	require.Equal(t, uint64(2), stats.NumRows)
}

func TestStatsSubSaturates(t *testing.T) {
	a := chunk.Stats{NumChunks: 1, NumRows: 1, TotalSizeBytes: 1}
	b := chunk.Stats{NumChunks: 5, NumRows: 5, TotalSizeBytes: 5}
	require.Equal(t, chunk.Stats{}, a.Sub(b))
}
