package banking

import (
	"context"

	"teller/internal/banking/models"
	"teller/internal/transport"
)

// TransactionsClient calls the /transactions endpoints.
type TransactionsClient struct {
	api *transport.Client
}

// NewTransactionsClient creates a transactions client on the shared transport.
func NewTransactionsClient(api *transport.Client) *TransactionsClient {
	return &TransactionsClient{api: api}
}

// List returns all transactions. When accountID is non-empty, only that
// account's transactions are returned.
func (c *TransactionsClient) List(ctx context.Context, accountID string) ([]models.Transaction, error) {
	path := "/transactions"
	if accountID != "" {
		path = "/accounts/" + accountID + "/transactions"
	}
	var transactions []models.Transaction
	if err := c.api.Get(ctx, path, &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

// Get returns one transaction by id.
func (c *TransactionsClient) Get(ctx context.Context, id string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := c.api.Get(ctx, "/transactions/"+id, &transaction); err != nil {
		return nil, err
	}
	return &transaction, nil
}

// Create posts a new transaction.
func (c *TransactionsClient) Create(ctx context.Context, req models.CreateTransactionRequest) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := c.api.Post(ctx, "/transactions", req, &transaction); err != nil {
		return nil, err
	}
	return &transaction, nil
}

// Update applies a partial update to a transaction.
func (c *TransactionsClient) Update(ctx context.Context, id string, req models.UpdateTransactionRequest) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := c.api.Patch(ctx, "/transactions/"+id, req, &transaction); err != nil {
		return nil, err
	}
	return &transaction, nil
}

// Delete removes a transaction.
func (c *TransactionsClient) Delete(ctx context.Context, id string) error {
	return c.api.Delete(ctx, "/transactions/"+id)
}
