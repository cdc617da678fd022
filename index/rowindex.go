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

package index

import (
	"sync"

	"github.com/google/btree"

	"github.com/erigontech/chunkstore/chunkid"
)

type rowEntry struct {
	row   chunkid.RowId
	chunk chunkid.ChunkId
}

func lessRowEntry(a, b rowEntry) bool {
	if c := a.row.Compare(b.row); c != 0 {
		return c < 0
	}
	return a.chunk.Less(b.chunk)
}

// RowIDIndex orders chunks by their MinRowID, mirroring
// chunk_ids_per_min_row_id: the structure GC's sweep phase walks to visit
// chunks in roughly creation order, oldest first.
type RowIDIndex struct {
	mu  sync.RWMutex
	t   *btree.BTreeG[rowEntry]
	pos map[[16]byte]chunkid.RowId
}

// NewRowIDIndex returns an empty index.
func NewRowIDIndex() *RowIDIndex {
	return &RowIDIndex{t: btree.NewG(btreeDegree, lessRowEntry), pos: make(map[[16]byte]chunkid.RowId)}
}

// Insert registers chunkID under minRowID.
func (idx *RowIDIndex) Insert(chunkID chunkid.ChunkId, minRowID chunkid.RowId) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.t.ReplaceOrInsert(rowEntry{row: minRowID, chunk: chunkID})
	idx.pos[chunkID.Bytes()] = minRowID
}

// Remove drops chunkID from the index.
func (idx *RowIDIndex) Remove(chunkID chunkid.ChunkId) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	row, ok := idx.pos[chunkID.Bytes()]
	if !ok {
		return
	}
	idx.t.Delete(rowEntry{row: row, chunk: chunkID})
	delete(idx.pos, chunkID.Bytes())
}

// Ascending returns every chunk id in ascending MinRowID order.
func (idx *RowIDIndex) Ascending() []chunkid.ChunkId {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]chunkid.ChunkId, 0, idx.t.Len())
	idx.t.Ascend(func(e rowEntry) bool {
		out = append(out, e.chunk)
		return true
	})
	return out
}

// Len reports how many chunks are indexed.
func (idx *RowIDIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.t.Len()
}
