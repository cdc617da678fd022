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

	"github.com/erigontech/chunkstore/chunk"
	"github.com/erigontech/chunkstore/chunkid"
)

const btreeDegree = 32

// maxChunkID sorts greater than or equal to every real ChunkId; used as a
// search pivot when we need "every entry at time t" regardless of id.
var maxChunkID = chunkid.ChunkIdFromBytes([16]byte{
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
})

type timeEntry struct {
	time chunk.TimeInt
	id   chunkid.ChunkId
}

func lessTimeEntry(a, b timeEntry) bool {
	if a.time != b.time {
		return a.time < b.time
	}
	return a.id.Less(b.id)
}

// ChunkIdSetPerTime indexes a group of chunks (sharing one entity path,
// timeline, and usually one component) by the time range each chunk
// covers, so that latest-at and range queries only need to touch chunks
// that can possibly contribute (spec.md §4.2). It mirrors re_chunk_store's
// per_start_time / per_end_time interval index.
type ChunkIdSetPerTime struct {
	mu                sync.RWMutex
	perStartTime      *btree.BTreeG[timeEntry]
	perEndTime        *btree.BTreeG[timeEntry]
	rangeByID         map[[16]byte]chunk.TimeRange
	maxIntervalLength uint64
}

// NewChunkIdSetPerTime returns an empty index.
func NewChunkIdSetPerTime() *ChunkIdSetPerTime {
	return &ChunkIdSetPerTime{
		perStartTime: btree.NewG(btreeDegree, lessTimeEntry),
		perEndTime:   btree.NewG(btreeDegree, lessTimeEntry),
		rangeByID:    make(map[[16]byte]chunk.TimeRange),
	}
}

// Insert registers id as covering tr. Re-inserting the same id with a
// different range first removes the old entries.
func (s *ChunkIdSetPerTime) Insert(id chunkid.ChunkId, tr chunk.TimeRange) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.rangeByID[id.Bytes()]; ok {
		s.perStartTime.Delete(timeEntry{old.Min, id})
		s.perEndTime.Delete(timeEntry{old.Max, id})
	}
	s.perStartTime.ReplaceOrInsert(timeEntry{tr.Min, id})
	s.perEndTime.ReplaceOrInsert(timeEntry{tr.Max, id})
	s.rangeByID[id.Bytes()] = tr

	if span := tr.Span(); span > s.maxIntervalLength {
		s.maxIntervalLength = span
	}
}

// Remove drops id from the index.
func (s *ChunkIdSetPerTime) Remove(id chunkid.ChunkId) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tr, ok := s.rangeByID[id.Bytes()]
	if !ok {
		return
	}
	s.perStartTime.Delete(timeEntry{tr.Min, id})
	s.perEndTime.Delete(timeEntry{tr.Max, id})
	delete(s.rangeByID, id.Bytes())
	// maxIntervalLength is not recomputed on removal: it stays at its
	// high-water mark, which only costs a wider (but still correct)
	// candidate scan in Overlapping.
}

// Len reports how many chunks are currently indexed.
func (s *ChunkIdSetPerTime) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rangeByID)
}

func clampSub(t chunk.TimeInt, d uint64) chunk.TimeInt {
	if d > uint64(chunk.TimeMax) { // would certainly underflow past TimeStatic
		return chunk.TimeStatic
	}
	delta := chunk.TimeInt(d)
	if t < chunk.TimeStatic+delta {
		return chunk.TimeStatic
	}
	return t - delta
}

// Overlapping returns every chunk id whose registered range intersects q,
// in ascending start-time order.
func (s *ChunkIdSetPerTime) Overlapping(q chunk.TimeRange) []chunkid.ChunkId {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lower := clampSub(q.Min, s.maxIntervalLength)
	var out []chunkid.ChunkId
	s.perStartTime.AscendGreaterOrEqual(timeEntry{time: lower}, func(e timeEntry) bool {
		if e.time > q.Max {
			return false
		}
		if full, ok := s.rangeByID[e.id.Bytes()]; ok && full.Intersects(q) {
			out = append(out, e.id)
		}
		return true
	})
	return out
}

// TopByStartTime returns up to n chunk ids with the greatest start times,
// descending. Used by garbage collection to compute protect_latest
// (spec.md §4.3): the most recently started chunks in each group are kept
// alive regardless of GC target.
func (s *ChunkIdSetPerTime) TopByStartTime(n int) []chunkid.ChunkId {
	return s.topN(s.perStartTime, n)
}

// TopByEndTime returns up to n chunk ids with the greatest end times,
// descending.
func (s *ChunkIdSetPerTime) TopByEndTime(n int) []chunkid.ChunkId {
	return s.topN(s.perEndTime, n)
}

func (s *ChunkIdSetPerTime) topN(t *btree.BTreeG[timeEntry], n int) []chunkid.ChunkId {
	if n <= 0 {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[[16]byte]struct{}, n)
	var out []chunkid.ChunkId
	t.Descend(func(e timeEntry) bool {
		key := e.id.Bytes()
		if _, dup := seen[key]; dup {
			return true
		}
		seen[key] = struct{}{}
		out = append(out, e.id)
		return len(out) < n
	})
	return out
}

// LatestStartingAtOrBefore returns the ids of every chunk whose start time
// is the greatest start time not after t (several chunks can share it), in
// descending id order. Row-level comparison is left to the caller. Returns
// false if nothing starts at or before t.
func (s *ChunkIdSetPerTime) LatestStartingAtOrBefore(t chunk.TimeInt) ([]chunkid.ChunkId, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []chunkid.ChunkId
	var found chunk.TimeInt
	hasFound := false
	s.perStartTime.DescendLessOrEqual(timeEntry{time: t, id: maxChunkID}, func(e timeEntry) bool {
		if hasFound && e.time != found {
			return false
		}
		found = e.time
		hasFound = true
		out = append(out, e.id)
		return true
	})
	return out, hasFound
}
