package gc_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/chunkstore/chunk"
	"github.com/erigontech/chunkstore/chunkid"
	"github.com/erigontech/chunkstore/entitypath"
	"github.com/erigontech/chunkstore/gc"
	"github.com/erigontech/chunkstore/index"
)

var frame = entitypath.Timeline{Name: "frame", Kind: entitypath.TimelineKindSequence}

func insertTemporal(t *testing.T, idx *index.Index, path string, start chunk.TimeInt) *chunk.Chunk {
	t.Helper()
	g := chunkid.NewGenerator()
	c, err := chunk.NewBuilder(entitypath.Parse(path)).
		WithRowIDs(g.NewRowId()).
		WithTimeline(frame, []chunk.TimeInt{start}).
		WithComponent(entitypath.ComponentDescriptor{Component: "position"}, []any{"v"}).
		Build(g.NewChunkId())
	require.NoError(t, err)
	idx.Insert(c)
	return c
}

func TestGCEverythingDropsAllButProtected(t *testing.T) {
	idx := index.New()
	insertTemporal(t, idx, "/x", 0)
	insertTemporal(t, idx, "/x", 10)
	insertTemporal(t, idx, "/x", 20)

	res := gc.Run(idx, gc.Options{Target: gc.Everything(), ProtectLatest: 1}, nil)

	require.Len(t, res.RemovedChunkIDs, 2)
	require.Equal(t, 1, idx.Len())
}

func TestGCStaticNeverCollected(t *testing.T) {
	idx := index.New()
	g := chunkid.NewGenerator()
	c, err := chunk.NewBuilder(entitypath.Parse("/x")).
		WithRowIDs(g.NewRowId()).
		WithComponent(entitypath.ComponentDescriptor{Component: "color"}, []any{"red"}).
		Build(g.NewChunkId())
	require.NoError(t, err)
	idx.Insert(c)

	res := gc.Run(idx, gc.Options{Target: gc.Everything()}, nil)
	require.Empty(t, res.RemovedChunkIDs)
	require.Equal(t, 1, idx.Len())
}

func TestGCDropAtLeastFraction(t *testing.T) {
	idx := index.New()
	for i := 0; i < 10; i++ {
		insertTemporal(t, idx, "/x", chunk.TimeInt(i))
	}

	res := gc.Run(idx, gc.Options{Target: gc.DropAtLeastFraction(0.5), ProtectLatest: 0}, nil)
	require.GreaterOrEqual(t, len(res.RemovedChunkIDs), 5)
}
