package query_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/chunkstore/chunk"
	"github.com/erigontech/chunkstore/chunkid"
	"github.com/erigontech/chunkstore/entitypath"
	"github.com/erigontech/chunkstore/index"
	"github.com/erigontech/chunkstore/query"
)

var frame = entitypath.Timeline{Name: "frame", Kind: entitypath.TimelineKindSequence}

func buildTemporal(t *testing.T, path string, times []chunk.TimeInt, values []any) *chunk.Chunk {
	t.Helper()
	g := chunkid.NewGenerator()
	rowIDs := make([]chunkid.RowId, len(times))
	for i := range rowIDs {
		rowIDs[i] = g.NewRowId()
	}
	c, err := chunk.NewBuilder(entitypath.Parse(path)).
		WithRowIDs(rowIDs...).
		WithTimeline(frame, times).
		WithComponent(entitypath.ComponentDescriptor{Component: "position"}, values).
		Build(g.NewChunkId())
	require.NoError(t, err)
	return c
}

func buildStatic(t *testing.T, path string, value any) *chunk.Chunk {
	t.Helper()
	g := chunkid.NewGenerator()
	c, err := chunk.NewBuilder(entitypath.Parse(path)).
		WithRowIDs(g.NewRowId()).
		WithComponent(entitypath.ComponentDescriptor{Component: "color"}, []any{value}).
		Build(g.NewChunkId())
	require.NoError(t, err)
	return c
}

func TestLatestAtPicksMostRecent(t *testing.T) {
	idx := index.New()
	idx.Insert(buildTemporal(t, "/x", []chunk.TimeInt{0, 5, 10}, []any{"a", "b", "c"}))

	res, ok := query.LatestAt(idx, entitypath.Parse("/x"), "frame", "position", 7)
	require.True(t, ok)
	require.Equal(t, "b", res.Value)
	require.Equal(t, chunk.TimeInt(5), res.Time)
}

func TestLatestAtFallsBackToStatic(t *testing.T) {
	idx := index.New()
	idx.Insert(buildStatic(t, "/x", "red"))

	res, ok := query.LatestAt(idx, entitypath.Parse("/x"), "frame", "color", 1000)
	require.True(t, ok)
	require.Equal(t, "red", res.Value)
	require.Equal(t, chunk.TimeStatic, res.Time)
}

func TestLatestAtNotFound(t *testing.T) {
	idx := index.New()
	_, ok := query.LatestAt(idx, entitypath.Parse("/x"), "frame", "position", 10)
	require.False(t, ok)
}

func TestRangeOrdersByTimeThenRowID(t *testing.T) {
	idx := index.New()
	idx.Insert(buildTemporal(t, "/x", []chunk.TimeInt{10, 0, 20}, []any{"c", "a", "e"}))

	res := query.Range(idx, entitypath.Parse("/x"), "frame", "position", chunk.TimeRange{Min: 0, Max: 15}, false)
	require.Len(t, res, 2)
	require.Equal(t, "a", res[0].Value)
	require.Equal(t, "c", res[1].Value)
}

func TestRangeIncludesStaticFallback(t *testing.T) {
	idx := index.New()
	idx.Insert(buildStatic(t, "/x", "blue"))

	desc := entitypath.ComponentDescriptor{Component: "color"}
	c, err := chunk.NewBuilder(entitypath.Parse("/x")).
		WithRowIDs(chunkid.NewGenerator().NewRowId()).
		WithTimeline(frame, []chunk.TimeInt{5}).
		WithComponent(desc, []any{"green"}).
		Build(chunkid.NewGenerator().NewChunkId())
	require.NoError(t, err)
	idx.Insert(c)

	// A static value for "color" exists, so the range result is that
	// single static row: the range is irrelevant for static data
	// (spec.md §4.2.2 step 1), and the temporal "green" row is never
	// consulted.
	res := query.Range(idx, entitypath.Parse("/x"), "frame", "color", chunk.TimeRange{Min: 0, Max: 10}, true)
	require.Len(t, res, 1)
	require.Equal(t, chunk.TimeStatic, res[0].Time)
	require.Equal(t, "blue", res[0].Value)
}

func TestRelevantChunksMatchesOverlap(t *testing.T) {
	idx := index.New()
	c := buildTemporal(t, "/x", []chunk.TimeInt{0, 10}, []any{"a", "b"})
	idx.Insert(c)

	ids := query.RelevantChunks(idx, entitypath.Parse("/x"), "frame", "position", chunk.TimeRange{Min: 5, Max: 20})
	require.Equal(t, []chunkid.ChunkId{c.ID()}, ids)
}

func TestTrackerObservesMatchingChunks(t *testing.T) {
	tr := query.NewTracker(entitypath.Parse("/x"), "frame", "position", chunk.TimeRange{Min: 0, Max: 100})
	c := buildTemporal(t, "/x", []chunk.TimeInt{1}, []any{"a"})
	tr.Observe(c)
	other := buildTemporal(t, "/y", []chunk.TimeInt{1}, []any{"a"})
	tr.Observe(other)

	got := tr.Drain()
	require.Equal(t, []chunkid.ChunkId{c.ID()}, got)
	require.Empty(t, tr.Drain())
}
