// Copyright 2024 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

package chunkid_test

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/erigontech/chunkstore/chunkid"
)

// TestGeneratorAlwaysMonotonic is the property-based counterpart of
// TestGeneratorMonotonic: for any sequence of NewRowId/NewChunkId calls
// interleaved in any order from a single Generator, every id compares
// strictly greater than every id minted before it (spec.md P1).
func TestGeneratorAlwaysMonotonic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		g := chunkid.NewGenerator()
		n := rapid.IntRange(1, 200).Draw(rt, "n")

		var prev chunkid.RowId
		first := true
		for i := 0; i < n; i++ {
			mintChunkID := rapid.Bool().Draw(rt, "mintChunkID")
			if mintChunkID {
				// ChunkId and RowId share the same monotonic counter, so
				// comparing their raw bytes still orders correctly.
				cur := g.NewChunkId()
				row := chunkid.RowIdFromBytes(cur.Bytes())
				if !first && !prev.Less(row) {
					rt.Fatalf("id minted out of order: prev=%s cur=%s", prev, row)
				}
				prev, first = row, false
				continue
			}
			cur := g.NewRowId()
			if !first && !prev.Less(cur) {
				rt.Fatalf("id minted out of order: prev=%s cur=%s", prev, cur)
			}
			prev, first = cur, false
		}
	})
}
