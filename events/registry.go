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

package events

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/erigontech/chunkstore/internal/telemetry"
)

// Subscriber receives StoreEvent batches. OnEvents is called once per
// insert_chunk/gc call with every event produced by that call, never
// interleaved with another call's batch (spec.md §4.4).
type Subscriber interface {
	OnEvents(events []StoreEvent)
}

// SubscriberFunc adapts a plain function to the Subscriber interface.
type SubscriberFunc func(events []StoreEvent)

func (f SubscriberFunc) OnEvents(events []StoreEvent) { f(events) }

// Handle identifies a registered subscriber so it can later be removed.
type Handle uint64

// Registry is a subscriber registry (spec.md §4.4/§9). Each Store creates
// its own Registry, so a subscriber registered with one store receives
// only that store's events. It is safe for concurrent use; Dispatch fans a batch out to every
// registered subscriber concurrently via errgroup, containing panics so
// one broken subscriber never takes down the store or its siblings.
type Registry struct {
	mu     sync.RWMutex
	next   Handle
	subs   map[Handle]Subscriber
	log    *telemetry.Logger
	nextID uint64
}

// NewRegistry constructs an empty registry. A nil logger is replaced with
// a no-op logger.
func NewRegistry(log *telemetry.Logger) *Registry {
	if log == nil {
		log = telemetry.Noop()
	}
	return &Registry{subs: make(map[Handle]Subscriber), log: log}
}

// Register adds a subscriber and returns a handle usable with Unregister.
func (r *Registry) Register(s Subscriber) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	h := r.next
	r.subs[h] = s
	return h
}

// Unregister removes a previously registered subscriber. It is a no-op if
// the handle is unknown.
func (r *Registry) Unregister(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subs, h)
}

// NextEventIDs reserves n consecutive event ids and returns the first one;
// callers assign them to events[i] = first+i in order.
func (r *Registry) NextEventIDs(n int) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	first := r.nextID
	r.nextID += uint64(n)
	return first
}

// Dispatch delivers events to every currently registered subscriber. Each
// subscriber runs in its own goroutine and Dispatch waits for all of them;
// a panicking subscriber is recovered and logged, so SubscriberPanicked
// never propagates to the caller of insert_chunk or gc.
func (r *Registry) Dispatch(ctx context.Context, batch []StoreEvent) {
	if len(batch) == 0 {
		return
	}
	r.mu.RLock()
	subs := make([]Subscriber, 0, len(r.subs))
	for _, s := range r.subs {
		subs = append(subs, s)
	}
	r.mu.RUnlock()

	if len(subs) == 0 {
		return
	}

	g, _ := errgroup.WithContext(ctx)
	for _, s := range subs {
		s := s
		g.Go(func() (err error) {
			defer func() {
				if p := recover(); p != nil {
					r.log.Error("subscriber panicked", "panic", p)
				}
			}()
			s.OnEvents(batch)
			return nil
		})
	}
	_ = g.Wait()
}
