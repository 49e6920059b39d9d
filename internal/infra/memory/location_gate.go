package memory

import (
	"context"
	"sync"
)

// LocationGate is an in-process implementation of app.LocationLocker: a
// one-slot semaphore per location, so deck generation for a location is
// single-writer within this process.
type LocationGate struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewLocationGate() *LocationGate {
	return &LocationGate{slots: make(map[string]chan struct{})}
}

func (g *LocationGate) Acquire(ctx context.Context, locationID string) (func(), error) {
	g.mu.Lock()
	slot, ok := g.slots[locationID]
	if !ok {
		slot = make(chan struct{}, 1)
		g.slots[locationID] = slot
	}
	g.mu.Unlock()

	select {
	case slot <- struct{}{}:
		return func() { <-slot }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
