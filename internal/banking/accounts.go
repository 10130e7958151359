// Package banking wraps the banking API's resource endpoints. Every call
// rides the shared authenticated transport, so a 401 anywhere reconciles the
// session exactly once, in the transport middleware.
package banking

import (
	"context"
	"fmt"

	"teller/internal/banking/models"
	"teller/internal/transport"
)

// AccountsClient calls the /accounts endpoints.
type AccountsClient struct {
	api *transport.Client
}

// NewAccountsClient creates an accounts client on the shared transport.
func NewAccountsClient(api *transport.Client) *AccountsClient {
	return &AccountsClient{api: api}
}

// List returns all accounts visible to the current user.
func (c *AccountsClient) List(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := c.api.Get(ctx, "/accounts", &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// Get returns one account by id.
func (c *AccountsClient) Get(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	if err := c.api.Get(ctx, "/accounts/"+id, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// Create opens a new account.
func (c *AccountsClient) Create(ctx context.Context, req models.CreateAccountRequest) (*models.Account, error) {
	var account models.Account
	if err := c.api.Post(ctx, "/accounts", req, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// Update applies a partial update to an account.
func (c *AccountsClient) Update(ctx context.Context, id string, req models.UpdateAccountRequest) (*models.Account, error) {
	var account models.Account
	if err := c.api.Patch(ctx, "/accounts/"+id, req, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// Transfer moves money between two accounts. The server rejects unknown
// account numbers, non-positive amounts, and transfers exceeding the source
// balance; those surface as domain errors with the server's message.
func (c *AccountsClient) Transfer(ctx context.Context, req models.TransferRequest) error {
	return c.api.Post(ctx, "/accounts/transfer", req, nil)
}

// Delete removes an account.
func (c *AccountsClient) Delete(ctx context.Context, id string) error {
	return c.api.Delete(ctx, "/accounts/"+id)
}

// Transactions returns the transactions of one account.
func (c *AccountsClient) Transactions(ctx context.Context, id string) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := c.api.Get(ctx, fmt.Sprintf("/accounts/%s/transactions", id), &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}
