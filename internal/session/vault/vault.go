// Package vault stores the bearer credential between runs and coordinates
// logout across every session sharing the store. It is the client-side
// counterpart of browser local storage: fixed keys, last write wins, and a
// transient forced-logout flag cleared as soon as it is observed.
package vault

import "context"

// EventType classifies a change observed on the vault.
type EventType int

const (
	// EventCredentialChanged fires when the stored token was written or
	// removed by any session sharing the vault.
	EventCredentialChanged EventType = iota
	// EventForcedLogout fires when the forced-logout flag was raised.
	EventForcedLogout
)

// Event is delivered to vault watchers on state changes.
type Event struct {
	Type EventType
}

// Vault persists the credential pair and the forced-logout flag.
//
// Error contract: read methods never fail (a missing or unreadable store
// reads as empty); write methods return infrastructure errors. Token and
// refresh token clear together; a vault must never hold one without having
// been asked for both.
type Vault interface {
	// Token returns the stored bearer token, or "" when none is stored.
	// Re-read on every call, never cached by the caller.
	Token() string
	// RefreshToken returns the stored refresh token, or "".
	RefreshToken() string
	// Save persists both tokens in one write.
	Save(token, refreshToken string) error
	// Clear removes both tokens in one write.
	Clear() error
	// SetForcedLogout raises the cross-session logout flag.
	SetForcedLogout() error
	// ConsumeForcedLogout reports whether the flag was raised and lowers it
	// in the same step, so one observation never re-triggers.
	ConsumeForcedLogout() bool
	// Watch emits events until ctx is done. Delivery is at-least-once;
	// consumers must be idempotent.
	Watch(ctx context.Context) <-chan Event
}
