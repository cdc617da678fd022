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
	emath "github.com/erigontech/chunkstore/erigon-lib/common/math"
	"github.com/erigontech/chunkstore/entitypath"
)

// TimeInt is the store's time scalar. It uses two sentinel values rather
// than a separate "is this static?" flag: TimeStatic compares less than
// every temporal value, TimeMax compares greater than every finite value
// (spec.md §3.1, §9 "Sum types for query scope").
type TimeInt int64

const (
	// TimeStatic sorts before every real temporal value.
	TimeStatic TimeInt = TimeInt(emath.MinInt64)
	// TimeMax sorts after every real temporal value.
	TimeMax TimeInt = TimeInt(emath.MaxInt64)
)

// TimeRange is inclusive on both ends; Min <= Max always holds for a
// non-empty range.
type TimeRange struct {
	Min TimeInt
	Max TimeInt
}

// Span returns Max-Min saturated to a uint64, used to bound the backward
// scan in range queries (spec.md §4.2.2) and to grow an index's
// max_interval_length (spec.md §3.3, invariant I2).
func (r TimeRange) Span() uint64 {
	return emath.AbsoluteDifference(uint64(r.Max), uint64(r.Min))
}

// Intersects reports whether r and o share at least one instant.
func (r TimeRange) Intersects(o TimeRange) bool {
	return r.Min <= o.Max && o.Min <= r.Max
}

// Contains reports whether t falls within [Min, Max].
func (r TimeRange) Contains(t TimeInt) bool {
	return r.Min <= t && t <= r.Max
}

// TimeColumn holds one timeline's worth of per-row times for a chunk, plus
// cached derived facts (spec.md §3.2).
type TimeColumn struct {
	Timeline entitypath.Timeline
	// Times has exactly the chunk's row count; every entry is a real
	// temporal value (never TimeStatic/TimeMax — those are query-only
	// sentinels).
	Times []TimeInt

	timeRange TimeRange
	isSorted  bool
}

// NewTimeColumn computes the cached range/sortedness for times and returns
// the ready-to-use column.
func NewTimeColumn(timeline entitypath.Timeline, times []TimeInt) *TimeColumn {
	tc := &TimeColumn{Timeline: timeline, Times: times}
	tc.recompute()
	return tc
}

func (tc *TimeColumn) recompute() {
	if len(tc.Times) == 0 {
		tc.timeRange = TimeRange{}
		tc.isSorted = true
		return
	}
	lo, hi := tc.Times[0], tc.Times[0]
	sorted := true
	for i, t := range tc.Times {
		if t < lo {
			lo = t
		}
		if t > hi {
			hi = t
		}
		if i > 0 && tc.Times[i] < tc.Times[i-1] {
			sorted = false
		}
	}
	tc.timeRange = TimeRange{Min: lo, Max: hi}
	tc.isSorted = sorted
}

// TimeRange returns the cached [min, max] over this column's times.
func (tc *TimeColumn) TimeRange() TimeRange { return tc.timeRange }

// IsSorted reports whether Times is non-decreasing.
func (tc *TimeColumn) IsSorted() bool { return tc.isSorted }

// NumRows returns the column's row count.
func (tc *TimeColumn) NumRows() int { return len(tc.Times) }

// TimeCount pairs a distinct time with the cumulative number of events seen
// at or before it (ascending time order); see
// Chunk.NumEventsCumulativePerUniqueTime (spec.md §3.2, invariant 6).
type TimeCount struct {
	Time  TimeInt
	Count uint64
}
