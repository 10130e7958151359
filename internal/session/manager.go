// Package session owns the client-side authentication lifecycle: restoring
// a persisted credential into an identity, login/register/logout operations,
// and reacting to forced logouts raised by the transport or by another
// session sharing the credential vault.
package session

//go:generate mockgen -source=manager.go -destination=mocks/mocks.go -package=mocks AuthAPI,Vault

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"teller/internal/auth/models"
	"teller/internal/session/broadcast"
	"teller/internal/session/vault"
	dErrors "teller/pkg/domain-errors"
)

// AuthAPI is the slice of the remote API the manager needs.
type AuthAPI interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) error
	Profile(ctx context.Context) (*models.User, error)
	Refresh(ctx context.Context, refreshToken string) (*models.RefreshResponse, error)
	Logout(ctx context.Context) error
}

// Vault is the credential store the manager reads and reconciles.
type Vault interface {
	Token() string
	RefreshToken() string
	Save(token, refreshToken string) error
	Clear() error
	SetForcedLogout() error
	ConsumeForcedLogout() bool
	Watch(ctx context.Context) <-chan vault.Event
}

// Metrics records session lifecycle counters.
type Metrics interface {
	IncrementSessionRestores(outcome string)
	IncrementLogins(outcome string)
}

// Manager is the single source of truth for "who is this client acting as".
// All mutation goes through its operations; consumers read Snapshot.
type Manager struct {
	api    AuthAPI
	vault  Vault
	bus    *broadcast.Bus
	logger *slog.Logger

	metrics  Metrics
	redirect func(path string)

	loginPath string

	mu         sync.Mutex
	state      State
	user       *models.User
	generation uint64

	restores singleflight.Group
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithMetrics enables session lifecycle metrics.
func WithMetrics(metrics Metrics) Option {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

// WithBus sets the in-process forced-logout bus the manager listens on.
func WithBus(bus *broadcast.Bus) Option {
	return func(m *Manager) {
		m.bus = bus
	}
}

// WithRedirect sets the navigation callback invoked on forced logout. The
// manager calls it with the login entry point.
func WithRedirect(redirect func(path string)) Option {
	return func(m *Manager) {
		m.redirect = redirect
	}
}

// WithLoginPath overrides the login entry point passed to the redirect
// callback. Default "/login".
func WithLoginPath(path string) Option {
	return func(m *Manager) {
		if path != "" {
			m.loginPath = path
		}
	}
}

// NewManager creates a session manager in the Uninitialized state.
func NewManager(api AuthAPI, credentialVault Vault, opts ...Option) *Manager {
	m := &Manager{
		api:       api,
		vault:     credentialVault,
		state:     StateUninitialized,
		loginPath: "/login",
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.bus == nil {
		m.bus = broadcast.New()
	}
	return m
}

// Bus returns the forced-logout bus so the transport can publish onto it.
func (m *Manager) Bus() *broadcast.Bus {
	return m.bus
}

// Snapshot returns the current session view.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		User:      m.user,
		State:     m.state,
		IsLoading: m.state == StateUninitialized || m.state == StateRestoring,
	}
}

// IsAdmin reports whether the current identity carries the admin role.
// False when anonymous.
func (m *Manager) IsAdmin() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user.IsAdmin()
}

// Restore re-derives the session from the persisted credential. It runs on
// every navigation and is safe to run concurrently with itself: overlapping
// calls are deduplicated, and a stale restore that completes after a newer
// login observes a bumped generation and discards its result instead of
// overwriting the fresher session.
func (m *Manager) Restore(ctx context.Context) Snapshot {
	m.mu.Lock()
	if m.state == StateUninitialized {
		m.state = StateRestoring
	}
	gen := m.generation
	m.mu.Unlock()

	_, _, _ = m.restores.Do("restore", func() (any, error) {
		m.restore(ctx, gen)
		return nil, nil
	})
	return m.Snapshot()
}

func (m *Manager) restore(ctx context.Context, gen uint64) {
	token := m.vault.Token()
	if token == "" {
		m.applyRestore(gen, nil, "anonymous")
		return
	}

	if tokenExpired(token) {
		if refreshed := m.tryRefresh(ctx); !refreshed {
			m.applyRestore(gen, nil, "anonymous")
			return
		}
	}

	user, err := m.api.Profile(ctx)
	if err != nil {
		// A 401 already cleared the vault via the transport middleware;
		// everything else leaves the credential for the next attempt.
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			m.applyRestore(gen, nil, "anonymous")
			return
		}
		m.logger.WarnContext(ctx, "session restore failed",
			"error", err,
		)
		m.applyRestore(gen, nil, "error")
		return
	}
	m.applyRestore(gen, user, "authenticated")
}

// applyRestore installs a restoration result unless a newer operation has
// bumped the generation in the meantime.
func (m *Manager) applyRestore(gen uint64, user *models.User, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation != gen {
		return
	}
	if user != nil {
		m.user = user
		m.state = StateAuthenticated
	} else {
		m.user = nil
		m.state = StateAnonymous
	}
	if m.metrics != nil {
		m.metrics.IncrementSessionRestores(outcome)
	}
}

// tryRefresh exchanges the stored refresh token for a new bearer token.
func (m *Manager) tryRefresh(ctx context.Context) bool {
	refreshToken := m.vault.RefreshToken()
	if refreshToken == "" {
		return false
	}
	resp, err := m.api.Refresh(ctx, refreshToken)
	if err != nil {
		m.logger.WarnContext(ctx, "token refresh failed",
			"error", err,
		)
		return false
	}
	if err := m.vault.Save(resp.Token, refreshToken); err != nil {
		m.logger.ErrorContext(ctx, "failed to persist refreshed token",
			"error", err,
		)
		return false
	}
	return true
}

// tokenExpired inspects the unverified JWT claims for an exp in the past.
// Opaque (non-JWT) tokens never report expired; the server decides.
func tokenExpired(token string) bool {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now().Add(30 * time.Second))
}

// Login authenticates with the server. On success the credential is
// persisted and the identity installed; on failure neither the vault nor the
// session changes and the server's message (fallback "Login failed") is
// surfaced for the UI.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	resp, err := m.api.Login(ctx, models.LoginRequest{Username: username, Password: password})
	if err != nil {
		if m.metrics != nil {
			m.metrics.IncrementLogins("failure")
		}
		m.logger.WarnContext(ctx, "login failed",
			"username", username,
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeUnauthorized, dErrors.MessageOr(err, "Login failed"))
	}

	if err := m.vault.Save(resp.Token, resp.RefreshToken); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist credential")
	}

	m.mu.Lock()
	m.generation++
	user := resp.User
	m.user = &user
	m.state = StateAuthenticated
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.IncrementLogins("success")
	}
	m.logger.InfoContext(ctx, "login succeeded",
		"username", resp.User.Username,
		"role", string(resp.User.Role),
	)
	return nil
}

// Register creates a new user account. Session state is untouched no matter
// the outcome; errors carry the server's message (fallback "Registration
// failed").
func (m *Manager) Register(ctx context.Context, req models.RegisterRequest) error {
	if err := m.api.Register(ctx, req); err != nil {
		m.logger.WarnContext(ctx, "registration failed",
			"username", req.Username,
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeBadRequest, dErrors.MessageOr(err, "Registration failed"))
	}
	m.logger.InfoContext(ctx, "registration succeeded",
		"username", req.Username,
	)
	return nil
}

// Logout tells the server (best effort) and clears local state
// unconditionally: after Logout returns, the vault holds no credential and
// the identity is nil even if the server call failed.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.api.Logout(ctx); err != nil {
		// Best-effort notification; never surfaced to the user.
		m.logger.WarnContext(ctx, "server logout failed, clearing local state anyway",
			"error", err,
		)
	}
	m.clearLocal(ctx)
}

// clearLocal drops the credential and identity together.
func (m *Manager) clearLocal(ctx context.Context) {
	if err := m.vault.Clear(); err != nil {
		m.logger.ErrorContext(ctx, "failed to clear credential vault",
			"error", err,
		)
	}
	m.mu.Lock()
	m.generation++
	m.user = nil
	m.state = StateAnonymous
	m.mu.Unlock()
}

// forceLogout performs the local half of a logout and navigates to the login
// entry point. No server call: the credential is already dead.
func (m *Manager) forceLogout(ctx context.Context, reason string) {
	m.logger.WarnContext(ctx, "forced logout",
		"reason", reason,
	)
	m.clearLocal(ctx)
	if m.redirect != nil {
		m.redirect(m.loginPath)
	}
}

// Run reacts to forced-logout signals until ctx is done: in-process signals
// from the transport's 401 middleware, and cross-process ones observed on
// the vault. Credential changes made elsewhere trigger a re-restore so this
// session picks up a login performed by another one. Call in a goroutine.
func (m *Manager) Run(ctx context.Context) {
	signals := m.bus.Subscribe(ctx)
	events := m.vault.Watch(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-signals:
			if !ok {
				return
			}
			m.forceLogout(ctx, sig.Reason)
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Type {
			case vault.EventForcedLogout:
				// Consume-then-react: only one observer clears the flag, but
				// every session reacts to its own observation.
				if m.vault.ConsumeForcedLogout() {
					m.forceLogout(ctx, "forced logout flag observed")
				} else {
					m.forceLogout(ctx, "forced logout observed in another session")
				}
			case vault.EventCredentialChanged:
				m.Restore(ctx)
			}
		}
	}
}
