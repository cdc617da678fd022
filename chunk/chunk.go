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

// Package chunk implements C1 of the chunk store: the immutable, columnar
// Chunk type, its builder, and read-only slicing. See spec.md §3.2.
package chunk

import (
	"errors"
	"fmt"
	"sort"

	"github.com/erigontech/chunkstore/chunkid"
	"github.com/erigontech/chunkstore/entitypath"
)

// ErrBadChunk is returned by Builder.Build (through validate) when a chunk
// violates one of the §3.2 invariants: mismatched column lengths, a null
// entity path, zero rows, or duplicate row ids. Store.InsertChunk does not
// validate the chunks it is given.
var ErrBadChunk = errors.New("chunkstore: bad chunk")

// Chunk is an immutable columnar batch of rows for one entity path,
// produced by one client append or by internal compaction (spec.md §3.2).
// Once constructed, a Chunk's fields never change; any transformation
// produces a new Chunk with a new ChunkId.
type Chunk struct {
	id         chunkid.ChunkId
	entityPath entitypath.Path

	rowIDs          []chunkid.RowId
	isSortedByRowID bool
	minRowID        chunkid.RowId
	maxRowID        chunkid.RowId

	timelines  map[entitypath.TimelineName]*TimeColumn
	components map[entitypath.ComponentName]*ListColumn
}

// ID returns the chunk's identity.
func (c *Chunk) ID() chunkid.ChunkId { return c.id }

// EntityPath returns the entity path every row in the chunk belongs to.
func (c *Chunk) EntityPath() entitypath.Path { return c.entityPath }

// NumRows returns N, the chunk's row count.
func (c *Chunk) NumRows() int { return len(c.rowIDs) }

// IsStatic reports whether the chunk carries no timelines (spec.md §3.2,
// invariant 2).
func (c *Chunk) IsStatic() bool { return len(c.timelines) == 0 }

// IsSortedByRowID reports whether RowIDs() is already in ascending order.
func (c *Chunk) IsSortedByRowID() bool { return c.isSortedByRowID }

// RowIDs returns the chunk's row ids, index-aligned with every column.
func (c *Chunk) RowIDs() []chunkid.RowId { return c.rowIDs }

// MinRowID / MaxRowID return the cached extrema of RowIDs().
func (c *Chunk) MinRowID() chunkid.RowId { return c.minRowID }
func (c *Chunk) MaxRowID() chunkid.RowId { return c.maxRowID }

// Timelines returns the chunk's time columns, keyed by timeline name.
func (c *Chunk) Timelines() map[entitypath.TimelineName]*TimeColumn { return c.timelines }

// TimeColumn returns the named timeline's column, if present.
func (c *Chunk) TimeColumn(name entitypath.TimelineName) (*TimeColumn, bool) {
	tc, ok := c.timelines[name]
	return tc, ok
}

// Components returns the chunk's component columns, keyed by component
// name (see DESIGN.md for why ComponentDescriptor collapses to
// ComponentName as the map key here).
func (c *Chunk) Components() map[entitypath.ComponentName]*ListColumn { return c.components }

// Component returns the named component's column, if present.
func (c *Chunk) Component(name entitypath.ComponentName) (*ListColumn, bool) {
	lc, ok := c.components[name]
	return lc, ok
}

// ComponentNames returns the set of components carried by this chunk.
func (c *Chunk) ComponentNames() []entitypath.ComponentName {
	names := make([]entitypath.ComponentName, 0, len(c.components))
	for n := range c.components {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// NumEventsForComponent returns the count of non-null rows for component c
// (spec.md §3.2, invariant 6).
func (c *Chunk) NumEventsForComponent(name entitypath.ComponentName) int {
	lc, ok := c.components[name]
	if !ok {
		return 0
	}
	return lc.NumNonNull()
}

// NumEventsCumulativePerUniqueTime returns (time, cumulative_count) pairs
// grouped by distinct times on timeline t, in ascending time order
// (spec.md §3.2, invariant 6). Used by density-graph style visualizers.
func (c *Chunk) NumEventsCumulativePerUniqueTime(timeline entitypath.TimelineName) ([]TimeCount, bool) {
	tc, ok := c.timelines[timeline]
	if !ok {
		return nil, false
	}

	type bucket struct {
		time  TimeInt
		count uint64
	}
	counts := make(map[TimeInt]uint64, len(tc.Times))
	for _, t := range tc.Times {
		counts[t]++
	}
	buckets := make([]bucket, 0, len(counts))
	for t, n := range counts {
		buckets = append(buckets, bucket{time: t, count: n})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].time < buckets[j].time })

	out := make([]TimeCount, len(buckets))
	var cumulative uint64
	for i, b := range buckets {
		cumulative += b.count
		out[i] = TimeCount{Time: b.time, Count: cumulative}
	}
	return out, true
}

// SizeBytes estimates the chunk's heap footprint for stats and GC
// accounting. Component values are opaque to the store, so non-primitive
// values fall back to a fixed per-row estimate.
func (c *Chunk) SizeBytes() uint64 {
	var n uint64
	n += uint64(len(c.rowIDs)) * 16
	for _, tc := range c.timelines {
		n += uint64(len(tc.Times)) * 8
	}
	for _, lc := range c.components {
		for _, v := range lc.Values {
			n += sizeOfValue(v)
		}
	}
	return n
}

const defaultComponentCellBytes = 32

func sizeOfValue(v any) uint64 {
	switch x := v.(type) {
	case nil:
		return 0
	case []byte:
		return uint64(len(x))
	case string:
		return uint64(len(x))
	default:
		return defaultComponentCellBytes
	}
}

// RecordBatchMeta is the wire-shaped description of a chunk's schema: its
// entity path, timeline names, and component descriptors. It exists so a
// future wire/serialization layer (out of scope for this module, spec.md
// §1) has a concrete Go shape to serialize without reaching back into
// Chunk's internals.
type RecordBatchMeta struct {
	EntityPath entitypath.Path
	NumRows    int
	Timelines  []entitypath.TimelineName
	Components []entitypath.ComponentDescriptor
}

// ToRecordBatchMeta summarizes c's schema for serialization purposes.
func (c *Chunk) ToRecordBatchMeta() RecordBatchMeta {
	timelines := make([]entitypath.TimelineName, 0, len(c.timelines))
	for name := range c.timelines {
		timelines = append(timelines, name)
	}
	sort.Slice(timelines, func(i, j int) bool { return timelines[i] < timelines[j] })

	components := make([]entitypath.ComponentDescriptor, 0, len(c.components))
	for _, lc := range c.components {
		components = append(components, lc.Descriptor)
	}
	sort.Slice(components, func(i, j int) bool {
		return components[i].Component < components[j].Component
	})

	return RecordBatchMeta{
		EntityPath: c.entityPath,
		NumRows:    c.NumRows(),
		Timelines:  timelines,
		Components: components,
	}
}

// Slice is a read-only, non-owning view over a subset of a chunk's rows, in
// caller-chosen order. Slicing never copies column data (spec.md §4.2.2,
// bullet 4); it is the ChunkSlice type referenced by the query API (§6.2).
type Slice struct {
	Chunk *Chunk
	// Rows holds row indices into Chunk's columns, in the slice's
	// presentation order. It may repeat or omit indices relative to the
	// parent chunk.
	Rows []int
}

// NumRows returns the number of rows visible through this slice.
func (s Slice) NumRows() int { return len(s.Rows) }

// RowID returns the RowId backing the i-th row of the slice.
func (s Slice) RowID(i int) chunkid.RowId { return s.Chunk.rowIDs[s.Rows[i]] }

// Time returns the i-th row's time on the named timeline.
func (s Slice) Time(timeline entitypath.TimelineName, i int) (TimeInt, bool) {
	tc, ok := s.Chunk.timelines[timeline]
	if !ok {
		return 0, false
	}
	return tc.Times[s.Rows[i]], true
}

// Component returns the i-th row's value for the named component, and
// whether that row has a non-null value.
func (s Slice) Component(name entitypath.ComponentName, i int) (any, bool) {
	lc, ok := s.Chunk.components[name]
	if !ok {
		return nil, false
	}
	v := lc.Values[s.Rows[i]]
	return v, v != nil
}

// FullSlice returns a Slice covering every row of c in storage order.
func FullSlice(c *Chunk) Slice {
	rows := make([]int, c.NumRows())
	for i := range rows {
		rows[i] = i
	}
	return Slice{Chunk: c, Rows: rows}
}

// validate checks the §3.2 invariants for Builder.Build, which does no
// checking of its own: a null entity path, zero rows, duplicate row ids,
// and every time and component column having exactly one entry per row.
func validate(c *Chunk) error {
	if c.entityPath.String() == "" {
		return fmt.Errorf("%w: nil entity path", ErrBadChunk)
	}
	n := len(c.rowIDs)
	if n == 0 {
		return fmt.Errorf("%w: zero rows", ErrBadChunk)
	}
	seen := make(map[chunkid.RowId]struct{}, n)
	for _, id := range c.rowIDs {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate row id %s", ErrBadChunk, id)
		}
		seen[id] = struct{}{}
	}
	for name, tc := range c.timelines {
		if tc.NumRows() != n {
			return fmt.Errorf("%w: timeline %s has %d rows, want %d", ErrBadChunk, name, tc.NumRows(), n)
		}
	}
	for name, lc := range c.components {
		if lc.NumRows() != n {
			return fmt.Errorf("%w: component %s has %d rows, want %d", ErrBadChunk, name, lc.NumRows(), n)
		}
	}
	return nil
}
