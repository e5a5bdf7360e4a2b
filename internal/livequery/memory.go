package livequery

import (
	"context"
	"sync"
)

// MemoryBus is an in-process Bus for single-node runs and tests.
type MemoryBus struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]func()
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[string]map[int]func())}
}

// Publish invokes every callback registered for key, synchronously in the
// caller's goroutine. Callbacks must not publish back to the same key.
func (b *MemoryBus) Publish(_ context.Context, key string) {
	b.mu.Lock()
	fns := make([]func(), 0, len(b.subs[key]))
	for _, fn := range b.subs[key] {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (b *MemoryBus) Subscribe(key string, fn func()) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	if b.subs[key] == nil {
		b.subs[key] = make(map[int]func())
	}
	b.subs[key][id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs[key], id)
		if len(b.subs[key]) == 0 {
			delete(b.subs, key)
		}
		b.mu.Unlock()
	}
}
