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

// Stats is the per-plane chunk/row/byte accounting backing
// ChunkStoreStats (spec.md §3.4). It supports subtraction so that GC can
// report "what changed" as a single delta, mirroring re_chunk_store's
// `stats_before - stats_after` (see SPEC_FULL.md §3).
type Stats struct {
	NumChunks      uint64
	NumRows        uint64
	TotalSizeBytes uint64
}

// FromChunk returns the single-chunk contribution to a Stats total.
func FromChunk(c *Chunk) Stats {
	return Stats{NumChunks: 1, NumRows: uint64(c.NumRows()), TotalSizeBytes: c.SizeBytes()}
}

// Add returns the element-wise sum of s and o.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		NumChunks:      s.NumChunks + o.NumChunks,
		NumRows:        s.NumRows + o.NumRows,
		TotalSizeBytes: s.TotalSizeBytes + o.TotalSizeBytes,
	}
}

// Sub returns the element-wise difference of s and o, saturating at zero.
func (s Stats) Sub(o Stats) Stats {
	return Stats{
		NumChunks:      satSub(s.NumChunks, o.NumChunks),
		NumRows:        satSub(s.NumRows, o.NumRows),
		TotalSizeBytes: satSub(s.TotalSizeBytes, o.TotalSizeBytes),
	}
}

func satSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

// Totals pairs the temporal and static planes, matching ChunkStoreStats
// (spec.md §3.4): stats are tracked separately for each plane, since static
// data is never garbage collected.
type Totals struct {
	Temporal Stats
	Static   Stats
}

// Total returns the sum of both planes.
func (t Totals) Total() Stats { return t.Temporal.Add(t.Static) }

// Sub returns the element-wise, per-plane difference.
func (t Totals) Sub(o Totals) Totals {
	return Totals{Temporal: t.Temporal.Sub(o.Temporal), Static: t.Static.Sub(o.Static)}
}
