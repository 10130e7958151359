// Package e2e exercises the full client stack against the in-memory banking
// server: real HTTP, real middleware chain, real credential vault on disk.
package e2e

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"teller/internal/auth"
	"teller/internal/banking"
	"teller/internal/mockbank"
	"teller/internal/platform/metrics"
	"teller/internal/session"
	"teller/internal/session/broadcast"
	"teller/internal/session/vault"
	"teller/internal/transport"
	"teller/pkg/platform/circuit"
)

// watchInterval keeps cross-session propagation tests fast.
const watchInterval = 20 * time.Millisecond

// TestContext holds one wired client stack. Two contexts sharing a vault
// path model two browser tabs sharing local storage.
type TestContext struct {
	t *testing.T

	Server    *httptest.Server
	VaultPath string

	Vault        *vault.FileVault
	Bus          *broadcast.Bus
	Manager      *session.Manager
	Auth         *auth.Client
	Accounts     *banking.AccountsClient
	Transactions *banking.TransactionsClient
	Dashboard    *banking.DashboardClient

	mu        sync.Mutex
	redirects []string
}

// NewTestContext starts a fresh mock server and wires a client against it.
func NewTestContext(t *testing.T, serverOpts ...mockbank.Option) *TestContext {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts := append([]mockbank.Option{mockbank.WithLogger(logger)}, serverOpts...)
	ts := httptest.NewServer(mockbank.NewServer(opts...).Router())
	t.Cleanup(ts.Close)

	vaultPath := filepath.Join(t.TempDir(), "credentials.json")
	return newContext(t, ts, vaultPath)
}

// Join wires a second client stack onto an existing context's server and
// vault file.
func (tc *TestContext) Join() *TestContext {
	tc.t.Helper()
	return newContext(tc.t, tc.Server, tc.VaultPath)
}

func newContext(t *testing.T, ts *httptest.Server, vaultPath string) *TestContext {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	credentialVault, err := vault.NewFile(vaultPath, vault.WithWatchInterval(watchInterval))
	require.NoError(t, err)

	tc := &TestContext{
		t:         t,
		Server:    ts,
		VaultPath: vaultPath,
		Vault:     credentialVault,
		Bus:       broadcast.New(),
	}

	met := metrics.NewWith(prometheus.NewRegistry())
	breaker := circuit.New("e2e")
	api := transport.New(ts.URL+"/api",
		transport.WithLogger(logger),
		transport.WithTimeout(5*time.Second),
		transport.WithMiddleware(
			transport.RequestID(),
			transport.Trace(),
			transport.Measure(met),
			transport.Bearer(credentialVault),
			transport.Unauthorized(transport.UnauthorizedConfig{
				Clearer:   credentialVault,
				Publisher: tc.Bus,
				Metrics:   met,
				Logger:    logger,
			}),
			transport.Breaker(breaker, met),
		),
	)

	tc.Auth = auth.NewClient(api)
	tc.Manager = session.NewManager(tc.Auth, credentialVault,
		session.WithLogger(logger),
		session.WithBus(tc.Bus),
		session.WithRedirect(tc.recordRedirect),
	)
	tc.Accounts = banking.NewAccountsClient(api)
	tc.Transactions = banking.NewTransactionsClient(api)
	tc.Dashboard = banking.NewDashboardClient(tc.Accounts, tc.Transactions)
	return tc
}

func (tc *TestContext) recordRedirect(path string) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.redirects = append(tc.redirects, path)
}

// Redirects returns the navigation targets forced logouts produced so far.
func (tc *TestContext) Redirects() []string {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return append([]string(nil), tc.redirects...)
}

// RevokeServerSide invalidates the current bearer token on the server
// without touching the client's vault, simulating a session killed remotely.
func (tc *TestContext) RevokeServerSide() {
	tc.t.Helper()

	token := tc.Vault.Token()
	require.NotEmpty(tc.t, token)

	req, err := http.NewRequest(http.MethodPost, tc.Server.URL+"/api/auth/logout", nil)
	require.NoError(tc.t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(tc.t, err)
	resp.Body.Close()
	require.Equal(tc.t, http.StatusOK, resp.StatusCode)
}
