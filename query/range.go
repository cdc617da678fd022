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
	"sort"

	"github.com/erigontech/chunkstore/chunk"
	"github.com/erigontech/chunkstore/entitypath"
	"github.com/erigontech/chunkstore/index"
)

// Range resolves every value logged for (entity, component) on timeline
// within tr, in ascending (time, row id) order (spec.md §4.2.2). When
// includeStatic is set and the entity has a static value for component,
// the range is irrelevant for static data (spec.md §4.2.2 step 1): the
// result is that single static row and the temporal scan is skipped
// entirely.
func Range(idx *index.Index, entity entitypath.Path, timeline entitypath.TimelineName, component entitypath.ComponentName, tr chunk.TimeRange, includeStatic bool) []Result {
	if includeStatic {
		if s, ok := latestStatic(idx, entity, component); ok {
			return []Result{s}
		}
	}

	var out []Result

	for _, cid := range idx.TemporalOverlapping(entity, timeline, component, tr) {
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
			if !tr.Contains(rt) {
				continue
			}
			out = append(out, Result{Chunk: c, RowIndex: i, RowID: rowIDs[i], Time: rt, Value: comp.Values[i]})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].RowID.Compare(out[j].RowID) < 0
	})

	return out
}
