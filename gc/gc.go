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

package gc

import (
	"math"
	"time"

	"github.com/erigontech/chunkstore/chunk"
	"github.com/erigontech/chunkstore/chunkid"
	"github.com/erigontech/chunkstore/index"
	"github.com/erigontech/chunkstore/internal/telemetry"
)

// Run performs one mark-and-sweep pass against idx and returns the chunks
// it removed. Static chunks are never eligible: spec.md §4.5 says static
// data is immune to collection.
func Run(idx *index.Index, opts Options, log *telemetry.Logger) Result {
	if log == nil {
		log = telemetry.Noop()
	}

	var deadline time.Time
	var markDeadline time.Time
	if opts.TimeBudget > 0 {
		now := time.Now()
		deadline = now.Add(opts.TimeBudget)
		markDeadline = now.Add(opts.TimeBudget / 4)
	}

	statsBefore := idx.Stats()

	// Protection is computed unconditionally: P5/S4 require that no chunk
	// intersecting ProtectedTimeRanges is ever removed, regardless of how
	// long the mark phase took. markDeadline only gates a warning, never
	// the protection set itself.
	protected := make(map[[16]byte]struct{})
	for _, id := range idx.ProtectLatestChunkIDs(opts.ProtectLatest) {
		protected[id.Bytes()] = struct{}{}
	}
	for _, id := range idx.ChunksIntersectingProtectedRanges(opts.ProtectedTimeRanges) {
		protected[id.Bytes()] = struct{}{}
	}
	if !markDeadline.IsZero() && time.Now().After(markDeadline) {
		log.Warn("gc mark phase exceeded its time budget; protection set was still computed in full")
	}

	targetBytes := bytesToRemove(opts.Target, statsBefore)

	var removedIDs []chunkid.ChunkId
	var removedChunks []*chunk.Chunk
	var removedBytes uint64
	timedOut := false

	for _, id := range idx.AllByRowOrder() {
		if removedBytes >= targetBytes {
			break
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			timedOut = true
			break
		}
		if _, isProtected := protected[id.Bytes()]; isProtected {
			continue
		}
		c, ok := idx.Get(id)
		if !ok || c.IsStatic() {
			continue
		}
		idx.Remove(id)
		removedIDs = append(removedIDs, id)
		removedChunks = append(removedChunks, c)
		removedBytes += c.SizeBytes()
	}

	return Result{
		RemovedChunkIDs: removedIDs,
		RemovedChunks:   removedChunks,
		StatsBefore:     statsBefore,
		StatsAfter:      idx.Stats(),
		TimedOut:        timedOut,
	}
}

// bytesToRemove computes the GC pass's target in heap bytes (spec.md §4.3,
// P5), not rows: with unevenly sized chunks, dropping a p-fraction of rows
// does not drop a p-fraction of bytes.
func bytesToRemove(target Target, before chunk.Totals) uint64 {
	if target.everything {
		return before.Temporal.TotalSizeBytes
	}
	f := target.dropAtLeastFraction
	if f <= 0 {
		return 0
	}
	return uint64(math.Ceil(f * float64(before.Temporal.TotalSizeBytes)))
}
