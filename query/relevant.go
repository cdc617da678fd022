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

package query

import (
	"github.com/erigontech/chunkstore/chunk"
	"github.com/erigontech/chunkstore/chunkid"
	"github.com/erigontech/chunkstore/entitypath"
	"github.com/erigontech/chunkstore/index"
)

// TrackingMode controls how a relevant-chunks query reacts to chunks
// arriving after the query is first issued (spec.md §4.2.3).
type TrackingMode uint8

const (
	// Ignore answers once, against the index as it stands right now.
	Ignore TrackingMode = iota
	// Track registers a Tracker that the caller polls for newly relevant
	// chunk ids as they're ingested.
	Track
	// FetchNow behaves like Track but also returns the chunks already
	// relevant as of the call, so the caller doesn't have to combine two
	// result sets for a historical-then-live read.
	FetchNow
)

// RelevantChunks returns every chunk id that can contribute rows to
// (entity, timeline, component) within tr, without resolving individual
// rows. It underlies the dataframe/table APIs that want to iterate
// chunks directly rather than row-by-row Results.
func RelevantChunks(idx *index.Index, entity entitypath.Path, timeline entitypath.TimelineName, component entitypath.ComponentName, tr chunk.TimeRange) []chunkid.ChunkId {
	return idx.TemporalOverlapping(entity, timeline, component, tr)
}

// RelevantChunksComponentless returns every chunk id touching (entity,
// timeline) within tr, across all components.
func RelevantChunksComponentless(idx *index.Index, entity entitypath.Path, timeline entitypath.TimelineName, tr chunk.TimeRange) []chunkid.ChunkId {
	return idx.ComponentlessOverlapping(entity, timeline, tr)
}

// Tracker accumulates chunk ids newly relevant to a standing
// relevant-chunks query, fed by a subscriber watching the store's
// changelog (spec.md §4.4). Drain resets the buffer.
type Tracker struct {
	Entity    entitypath.Path
	Timeline  entitypath.TimelineName
	Component entitypath.ComponentName
	Range     chunk.TimeRange

	pending []chunkid.ChunkId
}

// NewTracker returns a Tracker for the given query shape. It takes no
// TrackingMode and only buffers chunks passed to Observe after it is
// created; chunks already in the index are not included.
func NewTracker(entity entitypath.Path, timeline entitypath.TimelineName, component entitypath.ComponentName, tr chunk.TimeRange) *Tracker {
	return &Tracker{Entity: entity, Timeline: timeline, Component: component, Range: tr}
}

// Observe is called by the owning subscriber for every chunk added to the
// store; it buffers the id if the chunk matches this tracker's shape.
func (tr *Tracker) Observe(c *chunk.Chunk) {
	if !c.EntityPath().Equal(tr.Entity) {
		return
	}
	if c.IsStatic() {
		return
	}
	tc, ok := c.TimeColumn(tr.Timeline)
	if !ok || !tc.TimeRange().Intersects(tr.Range) {
		return
	}
	if _, ok := c.Component(tr.Component); !ok {
		return
	}
	tr.pending = append(tr.pending, c.ID())
}

// Drain returns and clears the chunk ids accumulated since the last
// Drain call.
func (tr *Tracker) Drain() []chunkid.ChunkId {
	out := tr.pending
	tr.pending = nil
	return out
}
