package recursive_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/chunkstore/chunk"
	"github.com/erigontech/chunkstore/chunkid"
	"github.com/erigontech/chunkstore/entitypath"
	"github.com/erigontech/chunkstore/events"
	"github.com/erigontech/chunkstore/subscriber/recursive"
)

var frame = entitypath.Timeline{Name: "frame", Kind: entitypath.TimelineKindSequence}

func addition(t *testing.T, path string, times []chunk.TimeInt) events.StoreEvent {
	t.Helper()
	g := chunkid.NewGenerator()
	rowIDs := make([]chunkid.RowId, len(times))
	for i := range rowIDs {
		rowIDs[i] = g.NewRowId()
	}
	c, err := chunk.NewBuilder(entitypath.Parse(path)).
		WithRowIDs(rowIDs...).
		WithTimeline(frame, times).
		WithComponent(entitypath.ComponentDescriptor{Component: "position"}, make([]any, len(times))).
		Build(g.NewChunkId())
	require.NoError(t, err)
	return events.StoreEvent{Diff: events.Diff{Kind: events.Addition, Chunk: c}}
}

func TestRecursiveRangeAggregatesDescendants(t *testing.T) {
	agg := recursive.New(0)
	agg.OnEvents([]events.StoreEvent{
		addition(t, "/world/robot/arm", []chunk.TimeInt{10, 20}),
		addition(t, "/world/robot/leg", []chunk.TimeInt{5, 50}),
	})

	tr, ok := agg.RecursiveRange(entitypath.Parse("/world"), "frame")
	require.True(t, ok)
	require.Equal(t, chunk.TimeRange{Min: 5, Max: 50}, tr)

	tr, ok = agg.RecursiveRange(entitypath.Parse("/world/robot/arm"), "frame")
	require.True(t, ok)
	require.Equal(t, chunk.TimeRange{Min: 10, Max: 20}, tr)
}

func TestRecursiveRangeMissingEntity(t *testing.T) {
	agg := recursive.New(0)
	_, ok := agg.RecursiveRange(entitypath.Parse("/nothing"), "frame")
	require.False(t, ok)
}

func TestRecursiveRangeUpdatesOnNewData(t *testing.T) {
	agg := recursive.New(0)
	agg.OnEvents([]events.StoreEvent{addition(t, "/world/robot", []chunk.TimeInt{10})})

	tr, _ := agg.RecursiveRange(entitypath.Parse("/world"), "frame")
	require.Equal(t, chunk.TimeRange{Min: 10, Max: 10}, tr)

	agg.OnEvents([]events.StoreEvent{addition(t, "/world/robot", []chunk.TimeInt{100})})
	tr, _ = agg.RecursiveRange(entitypath.Parse("/world"), "frame")
	require.Equal(t, chunk.TimeRange{Min: 10, Max: 100}, tr)
}
