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
	"github.com/erigontech/chunkstore/entitypath"
	"github.com/erigontech/chunkstore/index"
)

// LatestAt resolves the value logged for (entity, component) on timeline
// at or before t (spec.md §4.2.1). A static value for component, if one
// exists, wins unconditionally and skips the temporal scan entirely
// (spec.md §4.5: "static data wins over temporal data in all queries").
func LatestAt(idx *index.Index, entity entitypath.Path, timeline entitypath.TimelineName, component entitypath.ComponentName, t chunk.TimeInt) (Result, bool) {
	if best, ok := latestStatic(idx, entity, component); ok {
		return best, true
	}
	return latestTemporal(idx, entity, timeline, component, t)
}

func latestTemporal(idx *index.Index, entity entitypath.Path, timeline entitypath.TimelineName, component entitypath.ComponentName, t chunk.TimeInt) (Result, bool) {
	var best Result
	found := false

	for _, cid := range idx.LatestAtCandidates(entity, timeline, component, t) {
		c, ok := idx.Get(cid)
		if !ok {
			continue
		}
		tc, ok := c.TimeColumn(timeline)
		if !ok {
			continue
		}
		comp, ok := c.Component(component)
		if !ok {
			continue
		}
		rowIDs := c.RowIDs()
		for i, rt := range tc.Times {
			if rt > t {
				continue
			}
			rid := rowIDs[i]
			if !found || betterThan(rt, rid, best.Time, best.RowID) {
				best = Result{Chunk: c, RowIndex: i, RowID: rid, Time: rt, Value: comp.Values[i]}
				found = true
			}
		}
	}
	return best, found
}

func latestStatic(idx *index.Index, entity entitypath.Path, component entitypath.ComponentName) (Result, bool) {
	var best Result
	found := false

	for _, cid := range idx.StaticChunksFor(entity, component) {
		c, ok := idx.Get(cid)
		if !ok {
			continue
		}
		comp, ok := c.Component(component)
		if !ok {
			continue
		}
		rowIDs := c.RowIDs()
		for i, rid := range rowIDs {
			if !found || rid.Compare(best.RowID) > 0 {
				best = Result{Chunk: c, RowIndex: i, RowID: rid, Time: chunk.TimeStatic, Value: comp.Values[i]}
				found = true
			}
		}
	}
	return best, found
}
