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

// Package gc implements the store's mark-and-sweep garbage collector
// (spec.md §4.3), grounded on re_chunk_store's gc.rs: the protected set is
// computed in full first (a warning is logged if that takes more than a
// quarter of the time budget), then the rest is swept in row-id order
// until the target is met or time runs out.
package gc

import (
	"time"

	"github.com/erigontech/chunkstore/chunkid"
	"github.com/erigontech/chunkstore/entitypath"

	"github.com/erigontech/chunkstore/chunk"
)

// Target describes how much of the store a GC pass should try to free.
type Target struct {
	everything          bool
	dropAtLeastFraction float64
}

// Everything asks GC to drop every unprotected chunk.
func Everything() Target { return Target{everything: true} }

// DropAtLeastFraction asks GC to free at least fraction (0..1] of the
// store's temporal heap bytes, stopping early once that much has been
// dropped.
func DropAtLeastFraction(fraction float64) Target {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	return Target{dropAtLeastFraction: fraction}
}

// Options configures a single GC pass (spec.md §4.3).
type Options struct {
	Target Target

	// TimeBudget caps wall-clock time spent in the sweep; zero means
	// unlimited. The protected set is always computed in full; if that
	// takes longer than a quarter of the budget, Run logs a warning.
	TimeBudget time.Duration

	// ProtectLatest is how many of the most-recently-started and
	// most-recently-ended chunks per (entity, timeline, component) group
	// are always kept, so latest-at never regresses to nothing.
	ProtectLatest int

	// ProtectedTimeRanges exempts chunks intersecting these per-timeline
	// ranges from collection, regardless of Target.
	ProtectedTimeRanges map[entitypath.TimelineName]chunk.TimeRange
}

// Result reports what a GC pass did.
type Result struct {
	RemovedChunkIDs []chunkid.ChunkId
	RemovedChunks   []*chunk.Chunk
	StatsBefore     chunk.Totals
	StatsAfter      chunk.Totals
	TimedOut        bool
}

// StatsDelta returns how much the pass freed.
func (r Result) StatsDelta() chunk.Totals { return r.StatsBefore.Sub(r.StatsAfter) }
