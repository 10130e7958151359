package banking

import (
	"context"

	"golang.org/x/sync/errgroup"

	"teller/internal/banking/models"
)

// Dashboard aggregates the account overview the landing view renders.
type Dashboard struct {
	Accounts           []models.Account
	RecentTransactions []models.Transaction
	TotalBalance       float64
	AccountsByType     map[models.AccountType]int
}

// maxRecentTransactions bounds the transaction list on the dashboard.
const maxRecentTransactions = 10

// DashboardClient assembles the dashboard from the resource clients.
type DashboardClient struct {
	accounts     *AccountsClient
	transactions *TransactionsClient
}

// NewDashboardClient creates a dashboard client over the resource clients.
func NewDashboardClient(accounts *AccountsClient, transactions *TransactionsClient) *DashboardClient {
	return &DashboardClient{accounts: accounts, transactions: transactions}
}

// Fetch gathers accounts and transactions in parallel with shared
// cancellation: the first failure cancels the sibling fetch. Each goroutine
// writes to its own variable, so there are no data races to guard.
func (c *DashboardClient) Fetch(ctx context.Context) (*Dashboard, error) {
	g, ctx := errgroup.WithContext(ctx)

	var accounts []models.Account
	var transactions []models.Transaction

	g.Go(func() error {
		var err error
		accounts, err = c.accounts.List(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		transactions, err = c.transactions.List(ctx, "")
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	dashboard := &Dashboard{
		Accounts:       accounts,
		AccountsByType: make(map[models.AccountType]int),
	}
	for _, account := range accounts {
		dashboard.TotalBalance += account.Balance
		dashboard.AccountsByType[account.AccountType]++
	}
	if len(transactions) > maxRecentTransactions {
		transactions = transactions[:maxRecentTransactions]
	}
	dashboard.RecentTransactions = transactions
	return dashboard, nil
}
