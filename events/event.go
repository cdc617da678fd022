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

// Package events is the store's changelog: a totally ordered stream of
// StoreEvent values describing every chunk addition and deletion
// (spec.md §4.4), plus the subscriber registry that fans them out.
package events

import (
	"fmt"

	"github.com/erigontech/chunkstore/chunk"
)

// Kind distinguishes an addition from a deletion in a StoreDiff.
type Kind uint8

const (
	Addition Kind = iota
	Deletion
)

func (k Kind) String() string {
	switch k {
	case Addition:
		return "addition"
	case Deletion:
		return "deletion"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Diff pairs a Kind with the chunk it concerns.
type Diff struct {
	Kind  Kind
	Chunk *chunk.Chunk
}

// StoreEvent is one entry of the store's changelog (spec.md §4.4). Events
// are delivered to subscribers in increasing EventID order, which is the
// store's single global total order — EventID never wraps or resets
// within a store's lifetime.
type StoreEvent struct {
	StoreID    string
	Generation uint64
	EventID    uint64
	Diff       Diff
}

// String renders a short human-readable summary, useful in logs and test
// failure messages.
func (e StoreEvent) String() string {
	return fmt.Sprintf("StoreEvent{store=%s gen=%d id=%d kind=%s chunk=%s}",
		e.StoreID, e.Generation, e.EventID, e.Diff.Kind, e.Diff.Chunk.ID())
}
