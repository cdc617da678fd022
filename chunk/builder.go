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

package chunk

import (
	"sort"

	"github.com/erigontech/chunkstore/chunkid"
	"github.com/erigontech/chunkstore/entitypath"
)

// Builder assembles a Chunk one column at a time. It is the path both
// clients (conceptually, outside this module) and internal compaction use
// to produce chunks.
type Builder struct {
	entityPath entitypath.Path
	rowIDs     []chunkid.RowId
	timelines  map[entitypath.TimelineName]*TimeColumn
	components map[entitypath.ComponentName]*ListColumn
}

// NewBuilder starts a chunk for the given entity path.
func NewBuilder(entityPath entitypath.Path) *Builder {
	return &Builder{
		entityPath: entityPath,
		timelines:  make(map[entitypath.TimelineName]*TimeColumn),
		components: make(map[entitypath.ComponentName]*ListColumn),
	}
}

// WithRowIDs sets the chunk's row ids; required before Build.
func (b *Builder) WithRowIDs(ids ...chunkid.RowId) *Builder {
	b.rowIDs = ids
	return b
}

// WithTimeline attaches a timeline's per-row times.
func (b *Builder) WithTimeline(timeline entitypath.Timeline, times []TimeInt) *Builder {
	b.timelines[timeline.Name] = NewTimeColumn(timeline, times)
	return b
}

// WithComponent attaches a component's per-row values (nil entries are
// null rows).
func (b *Builder) WithComponent(desc entitypath.ComponentDescriptor, values []any) *Builder {
	b.components[desc.Component] = &ListColumn{Descriptor: desc, Values: values}
	return b
}

// Build finalizes the chunk under the given id, deriving min/max row id and
// sortedness, and validating the §3.2 invariants.
func (b *Builder) Build(id chunkid.ChunkId) (*Chunk, error) {
	c := &Chunk{
		id:         id,
		entityPath: b.entityPath,
		rowIDs:     b.rowIDs,
		timelines:  b.timelines,
		components: b.components,
	}

	if len(c.rowIDs) > 0 {
		c.minRowID, c.maxRowID = c.rowIDs[0], c.rowIDs[0]
		sorted := true
		for i, id := range c.rowIDs {
			if id.Less(c.minRowID) {
				c.minRowID = id
			}
			if c.maxRowID.Less(id) {
				c.maxRowID = id
			}
			if i > 0 && id.Less(c.rowIDs[i-1]) {
				sorted = false
			}
		}
		c.isSortedByRowID = sorted
	}

	if err := validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

// SortedByRowID returns a new chunk with every column permuted into
// ascending RowId order. It is not used by insert_chunk (spec.md explicitly
// does not require sorted ingestion) but backs compaction and tests that
// want a canonical row order.
func SortedByRowID(c *Chunk) *Chunk {
	if c.IsSortedByRowID() {
		return c
	}
	n := c.NumRows()
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	sort.Slice(perm, func(i, j int) bool { return c.rowIDs[perm[i]].Less(c.rowIDs[perm[j]]) })

	out := &Chunk{
		id:              c.id,
		entityPath:      c.entityPath,
		isSortedByRowID: true,
		timelines:       make(map[entitypath.TimelineName]*TimeColumn, len(c.timelines)),
		components:      make(map[entitypath.ComponentName]*ListColumn, len(c.components)),
	}
	out.rowIDs = make([]chunkid.RowId, n)
	for i, p := range perm {
		out.rowIDs[i] = c.rowIDs[p]
	}
	out.minRowID, out.maxRowID = c.minRowID, c.maxRowID

	for name, tc := range c.timelines {
		times := make([]TimeInt, n)
		for i, p := range perm {
			times[i] = tc.Times[p]
		}
		out.timelines[name] = NewTimeColumn(tc.Timeline, times)
	}
	for name, lc := range c.components {
		values := make([]any, n)
		for i, p := range perm {
			values[i] = lc.Values[p]
		}
		out.components[name] = &ListColumn{Descriptor: lc.Descriptor, Values: values}
	}
	return out
}
