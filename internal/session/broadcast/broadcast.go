// Package broadcast is the in-process channel the transport and session
// manager use to propagate forced logouts. It replaces the storage-event
// side channel of the original client with an explicit pub/sub primitive:
// at-least-once delivery, non-blocking publish, idempotent consumers.
package broadcast

import (
	"context"
	"sync"
)

// Signal describes a session invalidation observed somewhere in the process.
type Signal struct {
	Reason string
}

// Bus fans signals out to every subscriber. Publish never blocks; a
// subscriber that has fallen behind misses the duplicate, not the logout,
// because every signal carries the same instruction.
type Bus struct {
	mu   sync.Mutex
	subs map[chan Signal]struct{}
}

// New constructs an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[chan Signal]struct{})}
}

// Subscribe returns a channel of signals, closed when ctx is done.
func (b *Bus) Subscribe(ctx context.Context) <-chan Signal {
	ch := make(chan Signal, 1)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, ch)
		b.mu.Unlock()
		close(ch)
	}()
	return ch
}

// Publish delivers the signal to all current subscribers without blocking.
func (b *Bus) Publish(sig Signal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- sig:
		default:
		}
	}
}

// PublishForcedLogout satisfies the transport's publisher interface.
func (b *Bus) PublishForcedLogout(reason string) {
	b.Publish(Signal{Reason: reason})
}
