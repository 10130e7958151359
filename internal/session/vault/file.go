package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// contents is the on-disk shape. Key names match what the original web
// client kept in local storage.
type contents struct {
	Token        string `json:"token,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ForceLogout  bool   `json:"forceLogout,omitempty"`
}

// FileVault persists credentials in a JSON file shared by every teller
// process of the same user. Writes are atomic (temp file plus rename) so a
// concurrent reader never sees a torn store.
type FileVault struct {
	mu       sync.Mutex
	path     string
	interval time.Duration
}

// FileOption configures a FileVault.
type FileOption func(*FileVault)

// WithWatchInterval sets the poll interval for Watch. Default 500ms.
func WithWatchInterval(d time.Duration) FileOption {
	return func(v *FileVault) {
		if d > 0 {
			v.interval = d
		}
	}
}

// NewFile creates a file-backed vault at path, creating parent directories
// as needed.
func NewFile(path string, opts ...FileOption) (*FileVault, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create vault directory: %w", err)
	}
	v := &FileVault{path: path, interval: 500 * time.Millisecond}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Path returns the vault file location.
func (v *FileVault) Path() string {
	return v.path
}

func (v *FileVault) read() contents {
	data, err := os.ReadFile(v.path)
	if err != nil {
		return contents{}
	}
	var c contents
	if err := json.Unmarshal(data, &c); err != nil {
		return contents{}
	}
	return c
}

func (v *FileVault) write(c contents) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode vault: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(v.path), ".vault-*")
	if err != nil {
		return fmt.Errorf("create vault temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write vault: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod vault: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close vault temp file: %w", err)
	}
	if err := os.Rename(tmpName, v.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace vault: %w", err)
	}
	return nil
}

// Token returns the stored bearer token, re-read from disk on every call so
// a credential written by another process is picked up without restarting.
func (v *FileVault) Token() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.read().Token
}

// RefreshToken returns the stored refresh token.
func (v *FileVault) RefreshToken() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.read().RefreshToken
}

// Save persists both tokens in one atomic write, lowering any pending
// forced-logout flag: a fresh login supersedes a stale logout signal.
func (v *FileVault) Save(token, refreshToken string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.write(contents{Token: token, RefreshToken: refreshToken})
}

// Clear removes both tokens in one atomic write. The forced-logout flag is
// preserved so other sessions still observe it.
func (v *FileVault) Clear() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	c := v.read()
	return v.write(contents{ForceLogout: c.ForceLogout})
}

// SetForcedLogout raises the cross-session logout flag.
func (v *FileVault) SetForcedLogout() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	c := v.read()
	c.ForceLogout = true
	return v.write(c)
}

// ConsumeForcedLogout reports and lowers the flag in one critical section.
func (v *FileVault) ConsumeForcedLogout() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	c := v.read()
	if !c.ForceLogout {
		return false
	}
	c.ForceLogout = false
	// Best effort: failing to lower the flag only risks a redundant logout.
	_ = v.write(c)
	return true
}

// Watch polls the vault file and emits an event whenever the token or the
// forced-logout flag changes. This is the storage-event analog for sessions
// in other processes.
func (v *FileVault) Watch(ctx context.Context) <-chan Event {
	events := make(chan Event, 4)
	go func() {
		defer close(events)
		ticker := time.NewTicker(v.interval)
		defer ticker.Stop()

		v.mu.Lock()
		last := v.read()
		v.mu.Unlock()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			v.mu.Lock()
			current := v.read()
			v.mu.Unlock()

			// Advance the per-field baseline only after a successful send, so
			// an event dropped on a full buffer is re-emitted next tick.
			if current.ForceLogout && !last.ForceLogout {
				select {
				case events <- Event{Type: EventForcedLogout}:
					last.ForceLogout = true
				default:
				}
			} else {
				last.ForceLogout = current.ForceLogout
			}
			if current.Token != last.Token {
				select {
				case events <- Event{Type: EventCredentialChanged}:
					last.Token = current.Token
				default:
				}
			}
			last.RefreshToken = current.RefreshToken
		}
	}()
	return events
}
