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

// Package index holds the store's acceleration structures: the per-time
// interval indices that answer latest-at/range queries (spec.md §4.2) and
// the chunk-id keyed tables GC sweeps over (spec.md §4.3).
package index

import (
	"sync"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/erigontech/chunkstore/chunkid"
)

// OrdinalTable assigns dense uint32 ordinals to ChunkIds so that sets of
// chunk ids can be represented as RoaringBitmaps, which only index
// uint32s. Ordinals are never reused once assigned, so a bitmap built
// from ordinals remains valid even after the owning chunk is removed from
// the table (callers must additionally check chunksByID for liveness).
type OrdinalTable struct {
	mu    sync.RWMutex
	toOrd map[[16]byte]uint32
	toID  []chunkid.ChunkId
}

// NewOrdinalTable returns an empty table.
func NewOrdinalTable() *OrdinalTable {
	return &OrdinalTable{toOrd: make(map[[16]byte]uint32)}
}

// OrdinalFor returns id's ordinal, assigning a new one if id is unseen.
func (t *OrdinalTable) OrdinalFor(id chunkid.ChunkId) uint32 {
	key := id.Bytes()

	t.mu.RLock()
	if o, ok := t.toOrd[key]; ok {
		t.mu.RUnlock()
		return o
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	if o, ok := t.toOrd[key]; ok {
		return o
	}
	o := uint32(len(t.toID))
	t.toOrd[key] = o
	t.toID = append(t.toID, id)
	return o
}

// IDFor reverses OrdinalFor.
func (t *OrdinalTable) IDFor(ordinal uint32) (chunkid.ChunkId, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(ordinal) >= len(t.toID) {
		return chunkid.ChunkId{}, false
	}
	return t.toID[ordinal], true
}

// Len reports how many distinct chunk ids have ever been assigned an
// ordinal.
func (t *OrdinalTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.toID)
}

// ChunkIDSet is a RoaringBitmap-backed set of ChunkIds, used where the
// store needs fast set membership/union/intersection over potentially
// large chunk populations (e.g. "every chunk touched by entity X").
type ChunkIDSet struct {
	table *OrdinalTable
	bits  *roaring.Bitmap
}

// NewChunkIDSet returns an empty set backed by table.
func NewChunkIDSet(table *OrdinalTable) *ChunkIDSet {
	return &ChunkIDSet{table: table, bits: roaring.New()}
}

func (s *ChunkIDSet) Add(id chunkid.ChunkId) { s.bits.Add(s.table.OrdinalFor(id)) }

func (s *ChunkIDSet) Remove(id chunkid.ChunkId) {
	if o, ok := s.table.toOrdIfPresent(id); ok {
		s.bits.Remove(o)
	}
}

func (s *ChunkIDSet) Contains(id chunkid.ChunkId) bool {
	o, ok := s.table.toOrdIfPresent(id)
	return ok && s.bits.Contains(o)
}

func (s *ChunkIDSet) Cardinality() uint64 { return s.bits.GetCardinality() }

// ToSlice materializes the set's members in ordinal (insertion-ish) order.
func (s *ChunkIDSet) ToSlice() []chunkid.ChunkId {
	out := make([]chunkid.ChunkId, 0, s.bits.GetCardinality())
	it := s.bits.Iterator()
	for it.HasNext() {
		if id, ok := s.table.IDFor(it.Next()); ok {
			out = append(out, id)
		}
	}
	return out
}

// Or returns a new set containing the union of s and o.
func (s *ChunkIDSet) Or(o *ChunkIDSet) *ChunkIDSet {
	return &ChunkIDSet{table: s.table, bits: roaring.Or(s.bits, o.bits)}
}

func (t *OrdinalTable) toOrdIfPresent(id chunkid.ChunkId) (uint32, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	o, ok := t.toOrd[id.Bytes()]
	return o, ok
}
