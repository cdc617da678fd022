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

	"github.com/erigontech/chunkstore/chunk"
	"github.com/erigontech/chunkstore/chunkid"
	"github.com/erigontech/chunkstore/entitypath"
)

// Index owns every acceleration structure the store maintains alongside
// the chunks themselves: the owning chunks_per_chunk_id table, the
// temporal per-(entity, timeline, component) and componentless indices,
// the static per-(entity, component) index, and the row-id ordered sweep
// index (spec.md §4.1/§4.2/§4.3).
type Index struct {
	mu sync.RWMutex

	chunksByID map[[16]byte]*chunk.Chunk
	rowIndex   *RowIDIndex
	ordinals   *OrdinalTable

	temporal      map[string]*ChunkIdSetPerTime // key: entityKey(entity) + "\x00" + timeline + "\x00" + component
	componentless map[string]*ChunkIdSetPerTime // key: entityKey(entity) + "\x00" + timeline
	static        map[string]chunkid.ChunkId    // key: entityKey(entity) + "\x00" + component; at most one chunk (spec.md §3.3)

	// staticRefCount tracks, for each chunk id appearing as a static
	// winner, how many (entity, component) keys in static currently point
	// to it. A static chunk is only removed from chunksByID once its
	// count drops to zero (spec.md I4: "if it is not referenced
	// elsewhere").
	staticRefCount map[[16]byte]int

	entityChunks map[string]*ChunkIDSet // key: entityKey(entity); every live chunk inserted for that entity

	// columnMetadata is additive-only: once a component name has been seen
	// with a descriptor carrying archetype metadata, that metadata is kept
	// even after every chunk using it is removed or GC'd (original_source/
	// gc.rs treats per_column_metadata the same way).
	columnMetadata map[entitypath.ComponentName]entitypath.ComponentDescriptor
}

// New returns an empty index.
func New() *Index {
	return &Index{
		chunksByID:    make(map[[16]byte]*chunk.Chunk),
		rowIndex:      NewRowIDIndex(),
		ordinals:      NewOrdinalTable(),
		temporal:       make(map[string]*ChunkIdSetPerTime),
		componentless:  make(map[string]*ChunkIdSetPerTime),
		static:         make(map[string]chunkid.ChunkId),
		staticRefCount: make(map[[16]byte]int),
		entityChunks:   make(map[string]*ChunkIDSet),
		columnMetadata: make(map[entitypath.ComponentName]entitypath.ComponentDescriptor),
	}
}

func entityKey(p entitypath.Path) string { return p.String() }

func temporalKey(entity string, timeline entitypath.TimelineName, component entitypath.ComponentName) string {
	return entity + "\x00" + string(timeline) + "\x00" + string(component)
}

func componentlessKey(entity string, timeline entitypath.TimelineName) string {
	return entity + "\x00" + string(timeline)
}

func staticKey(entity string, component entitypath.ComponentName) string {
	return entity + "\x00" + string(component)
}

// Insert adds c to every structure it belongs in. Callers must ensure c's
// id is not already present; Insert does not itself enforce idempotency
// (spec.md leaves duplicate insert_chunk behavior to the caller).
//
// For a static chunk, Insert resolves §3.3's last-writer-wins rule per
// component and returns the chunks that were shadowed out of existence as
// a result (I4) — the caller is responsible for turning each into a
// Deletion event.
func (idx *Index) Insert(c *chunk.Chunk) []*chunk.Chunk {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.chunksByID[c.ID().Bytes()] = c
	idx.ordinals.OrdinalFor(c.ID())
	if c.NumRows() > 0 {
		idx.rowIndex.Insert(c.ID(), c.MinRowID())
	}

	entity := entityKey(c.EntityPath())

	set, ok := idx.entityChunks[entity]
	if !ok {
		set = NewChunkIDSet(idx.ordinals)
		idx.entityChunks[entity] = set
	}
	set.Add(c.ID())

	for name, lc := range c.Components() {
		if _, seen := idx.columnMetadata[name]; !seen {
			idx.columnMetadata[name] = lc.Descriptor
		}
	}

	if c.IsStatic() {
		return idx.insertStaticLocked(entity, c)
	}

	for timelineName, tc := range c.Timelines() {
		tr := tc.TimeRange()

		clKey := componentlessKey(entity, timelineName)
		cl, ok := idx.componentless[clKey]
		if !ok {
			cl = NewChunkIdSetPerTime()
			idx.componentless[clKey] = cl
		}
		cl.Insert(c.ID(), tr)

		for _, name := range c.ComponentNames() {
			tKey := temporalKey(entity, timelineName, name)
			t, ok := idx.temporal[tKey]
			if !ok {
				t = NewChunkIdSetPerTime()
				idx.temporal[tKey] = t
			}
			t.Insert(c.ID(), tr)
		}
	}
	return nil
}

// insertStaticLocked resolves the static last-writer-wins rule for c,
// component by component (spec.md §4.1 step 3): a prior winner p for
// (entity, component) is replaced only if c.MaxRowID() >= p.MaxRowID();
// otherwise c's data for that component is discarded in favor of p. idx.mu
// must be held by the caller.
func (idx *Index) insertStaticLocked(entity string, c *chunk.Chunk) []*chunk.Chunk {
	shadowed := make(map[[16]byte]*chunk.Chunk)
	for _, name := range c.ComponentNames() {
		key := staticKey(entity, name)
		prevID, exists := idx.static[key]
		if exists {
			prev, ok := idx.chunksByID[prevID.Bytes()]
			if ok && c.MaxRowID().Compare(prev.MaxRowID()) < 0 {
				// Older write for this component: keep the existing
				// mapping, discard c's data for it.
				continue
			}
			if ok {
				idx.staticRefCount[prevID.Bytes()]--
				shadowed[prevID.Bytes()] = prev
			}
		}
		idx.static[key] = c.ID()
		idx.staticRefCount[c.ID().Bytes()]++
	}

	var removed []*chunk.Chunk
	for key, prev := range shadowed {
		if idx.staticRefCount[key] > 0 {
			continue
		}
		delete(idx.staticRefCount, key)
		idx.removeChunkLocked(prev.ID())
		removed = append(removed, prev)
	}
	return removed
}

// Remove drops id from every structure, returning the removed chunk. If id
// is a live static winner, its static mapping(s) are cleared too (callers
// doing this directly — GC never targets static chunks, but DropEntityPath
// can — leave no component shadowed by a chunk that no longer exists).
func (idx *Index) Remove(id chunkid.ChunkId) (*chunk.Chunk, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	c, ok := idx.chunksByID[id.Bytes()]
	if !ok {
		return nil, false
	}
	idx.removeChunkLocked(id)
	return c, true
}

// removeChunkLocked removes id from every index structure. idx.mu must be
// held by the caller. It is a no-op if id is not present.
func (idx *Index) removeChunkLocked(id chunkid.ChunkId) {
	c, ok := idx.chunksByID[id.Bytes()]
	if !ok {
		return
	}
	delete(idx.chunksByID, id.Bytes())
	idx.rowIndex.Remove(id)

	entity := entityKey(c.EntityPath())

	if set, ok := idx.entityChunks[entity]; ok {
		set.Remove(id)
		if set.Cardinality() == 0 {
			delete(idx.entityChunks, entity)
		}
	}

	if c.IsStatic() {
		for key, pid := range idx.static {
			if pid.Compare(id) == 0 {
				delete(idx.static, key)
			}
		}
		delete(idx.staticRefCount, id.Bytes())
		return
	}

	for timelineName := range c.Timelines() {
		clKey := componentlessKey(entity, timelineName)
		if cl, ok := idx.componentless[clKey]; ok {
			cl.Remove(id)
			if cl.Len() == 0 {
				delete(idx.componentless, clKey)
			}
		}
		for _, name := range c.ComponentNames() {
			tKey := temporalKey(entity, timelineName, name)
			if t, ok := idx.temporal[tKey]; ok {
				t.Remove(id)
				if t.Len() == 0 {
					delete(idx.temporal, tKey)
				}
			}
		}
	}
}

// Get returns the chunk registered under id.
func (idx *Index) Get(id chunkid.ChunkId) (*chunk.Chunk, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	c, ok := idx.chunksByID[id.Bytes()]
	return c, ok
}

// TemporalOverlapping returns chunk ids for (entity, timeline, component)
// overlapping tr.
func (idx *Index) TemporalOverlapping(entity entitypath.Path, timeline entitypath.TimelineName, component entitypath.ComponentName, tr chunk.TimeRange) []chunkid.ChunkId {
	idx.mu.RLock()
	t, ok := idx.temporal[temporalKey(entityKey(entity), timeline, component)]
	idx.mu.RUnlock()
	if !ok {
		return nil
	}
	return t.Overlapping(tr)
}

// ComponentlessOverlapping returns chunk ids for (entity, timeline),
// across every component, overlapping tr.
func (idx *Index) ComponentlessOverlapping(entity entitypath.Path, timeline entitypath.TimelineName, tr chunk.TimeRange) []chunkid.ChunkId {
	idx.mu.RLock()
	cl, ok := idx.componentless[componentlessKey(entityKey(entity), timeline)]
	idx.mu.RUnlock()
	if !ok {
		return nil
	}
	return cl.Overlapping(tr)
}

// LatestAtCandidates returns chunk ids that may contribute to a
// latest-at(entity, timeline, component, t) query. With s the greatest
// chunk start time not after t, it returns every chunk whose range
// intersects [s, t], in ascending start-time order; a chunk ending before
// s cannot hold a row later than s, so it is left out.
func (idx *Index) LatestAtCandidates(entity entitypath.Path, timeline entitypath.TimelineName, component entitypath.ComponentName, t chunk.TimeInt) []chunkid.ChunkId {
	idx.mu.RLock()
	tset, ok := idx.temporal[temporalKey(entityKey(entity), timeline, component)]
	idx.mu.RUnlock()
	if !ok {
		return nil
	}
	ids, ok := tset.LatestStartingAtOrBefore(t)
	if !ok {
		return nil
	}
	tset.mu.RLock()
	start := tset.rangeByID[ids[0].Bytes()].Min
	tset.mu.RUnlock()
	return tset.Overlapping(chunk.TimeRange{Min: start, Max: t})
}

// StaticChunksFor returns the single chunk id currently holding the static
// value for (entity, component), if any (spec.md §3.3: at most one chunk
// per (entity, component); later static writes replace earlier ones).
func (idx *Index) StaticChunksFor(entity entitypath.Path, component entitypath.ComponentName) []chunkid.ChunkId {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	id, ok := idx.static[staticKey(entityKey(entity), component)]
	if !ok {
		return nil
	}
	return []chunkid.ChunkId{id}
}

// AllByRowOrder returns every live chunk id in ascending MinRowID order,
// the order GC's mark-and-sweep walks the store in.
func (idx *Index) AllByRowOrder() []chunkid.ChunkId {
	return idx.rowIndex.Ascending()
}

// Len reports how many chunks are currently indexed.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.chunksByID)
}

// ProtectLatestChunkIDs returns, for every (entity, timeline, component)
// temporal group, the n chunks with the greatest start time and the n
// with the greatest end time, deduplicated. It implements
// find_all_protected_chunk_ids from the garbage collector's mark phase
// (spec.md §4.3): these chunks stay live so an un-timed latest-at query
// always has something to return.
func (idx *Index) ProtectLatestChunkIDs(n int) []chunkid.ChunkId {
	if n <= 0 {
		return nil
	}
	idx.mu.RLock()
	groups := make([]*ChunkIdSetPerTime, 0, len(idx.temporal))
	for _, t := range idx.temporal {
		groups = append(groups, t)
	}
	idx.mu.RUnlock()

	seen := make(map[[16]byte]struct{})
	var out []chunkid.ChunkId
	add := func(ids []chunkid.ChunkId) {
		for _, id := range ids {
			if _, ok := seen[id.Bytes()]; ok {
				continue
			}
			seen[id.Bytes()] = struct{}{}
			out = append(out, id)
		}
	}
	for _, g := range groups {
		add(g.TopByStartTime(n))
		add(g.TopByEndTime(n))
	}
	return out
}

// ChunksIntersectingProtectedRanges returns every live temporal chunk
// whose timeline range intersects the corresponding protected range,
// across every (entity, timeline, component) group. Used by garbage
// collection to honor GarbageCollectionOptions.ProtectedTimeRanges.
func (idx *Index) ChunksIntersectingProtectedRanges(protected map[entitypath.TimelineName]chunk.TimeRange) []chunkid.ChunkId {
	if len(protected) == 0 {
		return nil
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var out []chunkid.ChunkId
	for _, c := range idx.chunksByID {
		for timelineName, tc := range c.Timelines() {
			if pr, ok := protected[timelineName]; ok && tc.TimeRange().Intersects(pr) {
				out = append(out, c.ID())
				break
			}
		}
	}
	return out
}

// ChunksForEntity returns every live chunk id ever inserted for exactly
// entity (not its descendants), backed by a RoaringBitmap membership set
// so repeated lookups don't rescan the whole owning table.
func (idx *Index) ChunksForEntity(entity entitypath.Path) []chunkid.ChunkId {
	idx.mu.RLock()
	set, ok := idx.entityChunks[entityKey(entity)]
	idx.mu.RUnlock()
	if !ok {
		return nil
	}
	return set.ToSlice()
}

// ChunksMatching returns every live chunk whose entity path satisfies
// pred. Used by recursive drop_entity_path, which has no per-subtree
// index of its own and instead scans the owning table directly.
func (idx *Index) ChunksMatching(pred func(entitypath.Path) bool) []chunkid.ChunkId {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	var out []chunkid.ChunkId
	for _, c := range idx.chunksByID {
		if pred(c.EntityPath()) {
			out = append(out, c.ID())
		}
	}
	return out
}

// Stats computes a fresh chunk.Totals by scanning every live chunk.
func (idx *Index) Stats() chunk.Totals {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	var totals chunk.Totals
	for _, c := range idx.chunksByID {
		if c.IsStatic() {
			totals.Static = totals.Static.Add(chunk.FromChunk(c))
		} else {
			totals.Temporal = totals.Temporal.Add(chunk.FromChunk(c))
		}
	}
	return totals
}

// ColumnMetadata returns the archetype metadata recorded for component
// name the first time it was seen, if any. It is additive-only: neither
// Remove nor GC ever prune an entry (original_source/gc.rs treats
// per_column_metadata the same way).
func (idx *Index) ColumnMetadata(name entitypath.ComponentName) (entitypath.ComponentDescriptor, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	d, ok := idx.columnMetadata[name]
	return d, ok
}
