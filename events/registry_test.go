package events_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/chunkstore/events"
)

func TestRegistryDispatchesToAllSubscribers(t *testing.T) {
	r := events.NewRegistry(nil)

	var mu sync.Mutex
	var gotA, gotB int

	r.Register(events.SubscriberFunc(func(batch []events.StoreEvent) {
		mu.Lock()
		gotA += len(batch)
		mu.Unlock()
	}))
	r.Register(events.SubscriberFunc(func(batch []events.StoreEvent) {
		mu.Lock()
		gotB += len(batch)
		mu.Unlock()
	}))

	r.Dispatch(context.Background(), []events.StoreEvent{{EventID: 1}, {EventID: 2}})

	require.Equal(t, 2, gotA)
	require.Equal(t, 2, gotB)
}

func TestRegistryContainsPanics(t *testing.T) {
	r := events.NewRegistry(nil)
	var called bool

	r.Register(events.SubscriberFunc(func(batch []events.StoreEvent) {
		panic("boom")
	}))
	r.Register(events.SubscriberFunc(func(batch []events.StoreEvent) {
		called = true
	}))

	require.NotPanics(t, func() {
		r.Dispatch(context.Background(), []events.StoreEvent{{EventID: 1}})
	})
	require.True(t, called)
}

func TestUnregisterStopsDelivery(t *testing.T) {
	r := events.NewRegistry(nil)
	var count int
	h := r.Register(events.SubscriberFunc(func(batch []events.StoreEvent) { count++ }))
	r.Unregister(h)
	r.Dispatch(context.Background(), []events.StoreEvent{{EventID: 1}})
	require.Equal(t, 0, count)
}

func TestNextEventIDsMonotonic(t *testing.T) {
	r := events.NewRegistry(nil)
	a := r.NextEventIDs(3)
	b := r.NextEventIDs(2)
	require.Equal(t, uint64(0), a)
	require.Equal(t, uint64(3), b)
}
