package session

import "teller/internal/auth/models"

// State is the session lifecycle state.
//
//	Uninitialized -> Restoring -> {Authenticated, Anonymous}
//
// Restoration re-runs on every navigation, but once the first run resolves
// the session never reports loading again; later restores swap the identity
// in place.
type State int

const (
	StateUninitialized State = iota
	StateRestoring
	StateAuthenticated
	StateAnonymous
)

// String implements fmt.Stringer for logs.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRestoring:
		return "restoring"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Snapshot is the read-only view consumers (views, the route guard) get of
// the session at one instant.
type Snapshot struct {
	User      *models.User
	State     State
	IsLoading bool
}
