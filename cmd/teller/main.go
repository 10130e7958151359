// Command teller is a terminal client for the banking API. It keeps a
// logged-in session between invocations through the credential vault, the
// same way a browser tab keeps one through local storage.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"teller/internal/auth"
	"teller/internal/banking"
	"teller/internal/platform/config"
	"teller/internal/platform/logger"
	"teller/internal/platform/metrics"
	"teller/internal/session"
	"teller/internal/session/broadcast"
	"teller/internal/session/vault"
	"teller/internal/transport"
	"teller/pkg/platform/circuit"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "teller",
		Short:         "Banking API client with a persistent session",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	root.AddCommand(
		newLoginCmd(),
		newRegisterCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newAccountsCmd(),
		newTransactionsCmd(),
		newDashboardCmd(),
		newUsersCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app bundles the wired client stack for one CLI invocation.
type app struct {
	cfg     config.Client
	vault   *vault.FileVault
	manager *session.Manager
	auth    *auth.Client

	accounts     *banking.AccountsClient
	transactions *banking.TransactionsClient
	users        *banking.UsersClient
	dashboard    *banking.DashboardClient
}

func newApp(ctx context.Context) (*app, error) {
	cfg := config.FromEnv()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	log := logger.New()
	met := metrics.New()
	bus := broadcast.New()

	credentialVault, err := vault.NewFile(cfg.VaultPath, vault.WithWatchInterval(cfg.WatchInterval))
	if err != nil {
		return nil, fmt.Errorf("open credential vault: %w", err)
	}

	breaker := circuit.New("banking-api")
	api := transport.New(cfg.BaseURL,
		transport.WithLogger(log),
		transport.WithTimeout(cfg.RequestTimeout),
		transport.WithMiddleware(
			transport.RequestID(),
			transport.Trace(),
			transport.Measure(met),
			transport.Bearer(credentialVault),
			transport.Unauthorized(transport.UnauthorizedConfig{
				Clearer:   credentialVault,
				Publisher: bus,
				Metrics:   met,
				Logger:    log,
			}),
			transport.Breaker(breaker, met),
		),
	)

	authClient := auth.NewClient(api)
	manager := session.NewManager(authClient, credentialVault,
		session.WithLogger(log),
		session.WithMetrics(met),
		session.WithBus(bus),
		session.WithLoginPath(cfg.LoginPath),
		session.WithRedirect(func(path string) {
			fmt.Fprintf(os.Stderr, "Your session has ended. Run 'teller login' to sign in again.\n")
		}),
	)

	// React to forced logouts for as long as the command runs, the same
	// loop a long-lived session would keep.
	go manager.Run(ctx)

	accounts := banking.NewAccountsClient(api)
	transactions := banking.NewTransactionsClient(api)
	return &app{
		cfg:          cfg,
		vault:        credentialVault,
		manager:      manager,
		auth:         authClient,
		accounts:     accounts,
		transactions: transactions,
		users:        banking.NewUsersClient(api),
		dashboard:    banking.NewDashboardClient(accounts, transactions),
	}, nil
}

// requireSession restores the persisted session and refuses to proceed when
// no identity comes back, the CLI equivalent of a protected route.
func requireSession(cmd *cobra.Command, a *app) error {
	snap := a.manager.Restore(cmd.Context())
	guard := session.NewGuard(a.cfg.LoginPath)
	if guard.Evaluate(snap) != session.DecisionAllow {
		return fmt.Errorf("not logged in: run 'teller login' first")
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readPassword prompts on the terminal without echo, falling back to a
// plain line read when stdin is not a TTY.
func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		defer fmt.Fprintln(os.Stderr)
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	var line string
	if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
		return "", err
	}
	return line, nil
}
