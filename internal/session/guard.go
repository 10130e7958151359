package session

// Decision is the route guard's verdict for a protected view.
type Decision int

const (
	// DecisionAllow renders the protected view.
	DecisionAllow Decision = iota
	// DecisionWait renders nothing: restoration is still in flight and
	// redirecting now would bounce a user whose credential is about to be
	// restored.
	DecisionWait
	// DecisionRedirect sends the user to the login entry point.
	DecisionRedirect
)

// Guard decides whether a protected view may render for a given session
// snapshot.
type Guard struct {
	loginPath string
}

// NewGuard creates a guard redirecting to loginPath (default "/login").
func NewGuard(loginPath string) *Guard {
	if loginPath == "" {
		loginPath = "/login"
	}
	return &Guard{loginPath: loginPath}
}

// LoginPath returns the configured login entry point.
func (g *Guard) LoginPath() string {
	return g.loginPath
}

// Evaluate maps a session snapshot to a decision. Redirect happens only
// after restoration has completed and still found no identity.
func (g *Guard) Evaluate(snap Snapshot) Decision {
	if snap.User != nil {
		return DecisionAllow
	}
	if snap.IsLoading {
		return DecisionWait
	}
	return DecisionRedirect
}

// RequireAuth runs view only when snap allows it. Wait renders nothing and
// returns nil; Redirect invokes the redirect callback with the login path
// instead of running the view.
func (g *Guard) RequireAuth(snap Snapshot, view func() error, redirect func(path string)) error {
	switch g.Evaluate(snap) {
	case DecisionAllow:
		return view()
	case DecisionRedirect:
		if redirect != nil {
			redirect(g.loginPath)
		}
	}
	return nil
}
