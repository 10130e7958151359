package vault

import (
	"context"
	"sync"
)

// MemoryVault keeps credentials in memory for tests and ephemeral sessions.
// Watchers are notified synchronously on every change instead of by polling.
type MemoryVault struct {
	mu           sync.Mutex
	token        string
	refreshToken string
	forceLogout  bool
	watchers     map[chan Event]struct{}
}

// NewMemory constructs an empty in-memory vault.
func NewMemory() *MemoryVault {
	return &MemoryVault{watchers: make(map[chan Event]struct{})}
}

func (v *MemoryVault) notify(e Event) {
	for ch := range v.watchers {
		select {
		case ch <- e:
		default:
		}
	}
}

func (v *MemoryVault) Token() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.token
}

func (v *MemoryVault) RefreshToken() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.refreshToken
}

func (v *MemoryVault) Save(token, refreshToken string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	changed := v.token != token
	v.token = token
	v.refreshToken = refreshToken
	v.forceLogout = false
	if changed {
		v.notify(Event{Type: EventCredentialChanged})
	}
	return nil
}

func (v *MemoryVault) Clear() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	changed := v.token != ""
	v.token = ""
	v.refreshToken = ""
	if changed {
		v.notify(Event{Type: EventCredentialChanged})
	}
	return nil
}

func (v *MemoryVault) SetForcedLogout() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.forceLogout = true
	v.notify(Event{Type: EventForcedLogout})
	return nil
}

func (v *MemoryVault) ConsumeForcedLogout() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	raised := v.forceLogout
	v.forceLogout = false
	return raised
}

func (v *MemoryVault) Watch(ctx context.Context) <-chan Event {
	ch := make(chan Event, 4)
	v.mu.Lock()
	v.watchers[ch] = struct{}{}
	v.mu.Unlock()

	go func() {
		<-ctx.Done()
		v.mu.Lock()
		delete(v.watchers, ch)
		v.mu.Unlock()
		close(ch)
	}()
	return ch
}
