package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"teller/internal/auth/models"
)

func TestGuardAllowsAuthenticatedUser(t *testing.T) {
	g := NewGuard("/login")
	snap := Snapshot{User: &models.User{Username: "alice"}, State: StateAuthenticated}
	assert.Equal(t, DecisionAllow, g.Evaluate(snap))
}

func TestGuardWaitsWhileRestoring(t *testing.T) {
	g := NewGuard("/login")
	for _, state := range []State{StateUninitialized, StateRestoring} {
		snap := Snapshot{State: state, IsLoading: true}
		assert.Equal(t, DecisionWait, g.Evaluate(snap), "state %s", state)
	}
}

func TestGuardRedirectsCompletedAnonymous(t *testing.T) {
	g := NewGuard("/login")
	snap := Snapshot{State: StateAnonymous}
	assert.Equal(t, DecisionRedirect, g.Evaluate(snap))
	assert.Equal(t, "/login", g.LoginPath())
}

func TestGuardDefaultsLoginPath(t *testing.T) {
	g := NewGuard("")
	assert.Equal(t, "/login", g.LoginPath())
}

func TestRequireAuthRunsViewOnlyWhenAllowed(t *testing.T) {
	g := NewGuard("/signin")

	var ran bool
	var redirected string
	view := func() error { ran = true; return nil }
	redirect := func(path string) { redirected = path }

	snap := Snapshot{User: &models.User{Username: "alice"}, State: StateAuthenticated}
	assert.NoError(t, g.RequireAuth(snap, view, redirect))
	assert.True(t, ran)
	assert.Empty(t, redirected)

	ran = false
	assert.NoError(t, g.RequireAuth(Snapshot{State: StateRestoring, IsLoading: true}, view, redirect))
	assert.False(t, ran)
	assert.Empty(t, redirected)

	assert.NoError(t, g.RequireAuth(Snapshot{State: StateAnonymous}, view, redirect))
	assert.False(t, ran)
	assert.Equal(t, "/signin", redirected)
}
