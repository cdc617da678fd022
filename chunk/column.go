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

import "github.com/erigontech/chunkstore/entitypath"

// ListColumn is a length-N outer list column for one component. A nil entry
// at row i means component is null/absent for that row (spec.md §3.2).
// The store treats the component's logical type as opaque; codegen and the
// wire layer (out of scope here) are responsible for the concrete Go type
// stored in Values.
type ListColumn struct {
	Descriptor entitypath.ComponentDescriptor
	Values     []any
}

// NumRows returns the column's row count.
func (c *ListColumn) NumRows() int { return len(c.Values) }

// NumNonNull returns the count of non-null rows, i.e.
// Chunk.NumEventsForComponent (spec.md §3.2, invariant 6).
func (c *ListColumn) NumNonNull() int {
	n := 0
	for _, v := range c.Values {
		if v != nil {
			n++
		}
	}
	return n
}
