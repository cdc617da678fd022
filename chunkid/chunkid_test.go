package chunkid_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/chunkstore/chunkid"
)

func TestGeneratorMonotonic(t *testing.T) {
	g := chunkid.NewGenerator()
	prev := g.NewRowId()
	for i := 0; i < 1000; i++ {
		cur := g.NewRowId()
		require.True(t, prev.Less(cur), "row ids must be strictly increasing")
		prev = cur
	}
}

func TestGeneratorMonotonicAcrossMillis(t *testing.T) {
	g := chunkid.NewGenerator()
	a := g.NewChunkId()
	time.Sleep(2 * time.Millisecond)
	b := g.NewChunkId()
	require.True(t, a.Less(b))
}

func TestZeroValueIsZero(t *testing.T) {
	var r chunkid.RowId
	require.True(t, r.IsZero())
	g := chunkid.NewGenerator()
	require.False(t, g.NewRowId().IsZero())
}
