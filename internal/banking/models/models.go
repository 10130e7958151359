// Package models holds the banking resource DTOs returned by the remote
// API. Like the auth DTOs they are server-owned snapshots.
package models

// AccountType enumerates the account products the API serves.
type AccountType string

const (
	AccountTypeChecking   AccountType = "CHECKING"
	AccountTypeSavings    AccountType = "SAVINGS"
	AccountTypeCredit     AccountType = "CREDIT"
	AccountTypeInvestment AccountType = "INVESTMENT"
)

// AccountStatus is the server-side account state.
type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "ACTIVE"
	AccountStatusInactive AccountStatus = "INACTIVE"
	AccountStatusFrozen   AccountStatus = "FROZEN"
)

// Account is a bank account snapshot.
type Account struct {
	ID                string        `json:"id"`
	AccountHolderName string        `json:"accountHolderName"`
	AccountNumber     string        `json:"accountNumber"`
	AccountType       AccountType   `json:"accountType"`
	Balance           float64       `json:"balance"`
	Status            AccountStatus `json:"status"`
	InterestRate      float64       `json:"interestRate,omitempty"`
	CreatedAt         string        `json:"createdAt,omitempty"`
	UpdatedAt         string        `json:"updatedAt,omitempty"`
}

// CreateAccountRequest is the payload for creating an account; the server
// assigns id and timestamps.
type CreateAccountRequest struct {
	AccountHolderName string        `json:"accountHolderName"`
	AccountNumber     string        `json:"accountNumber"`
	AccountType       AccountType   `json:"accountType"`
	Balance           float64       `json:"balance"`
	Status            AccountStatus `json:"status"`
	InterestRate      float64       `json:"interestRate,omitempty"`
}

// UpdateAccountRequest carries a partial update; nil fields are untouched.
type UpdateAccountRequest struct {
	AccountHolderName *string        `json:"accountHolderName,omitempty"`
	AccountType       *AccountType   `json:"accountType,omitempty"`
	Balance           *float64       `json:"balance,omitempty"`
	Status            *AccountStatus `json:"status,omitempty"`
	InterestRate      *float64       `json:"interestRate,omitempty"`
}

// PaymentMethod enumerates how a transfer is funded.
type PaymentMethod string

const (
	PaymentMethodPayPal       PaymentMethod = "PAYPAL"
	PaymentMethodCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
)

// TransferRequest moves money between two accounts identified by account
// number. The server records the matching debit and credit transactions.
type TransferRequest struct {
	FromAccountNumber string        `json:"fromAccountNumber"`
	ToAccountNumber   string        `json:"toAccountNumber"`
	Amount            float64       `json:"amount"`
	PaymentMethod     PaymentMethod `json:"paymentMethod"`
}

// TransactionType distinguishes money in from money out.
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "CREDIT"
	TransactionTypeDebit  TransactionType = "DEBIT"
)

// TransactionStatus is the server-side processing state.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// Transaction is a ledger entry snapshot.
type Transaction struct {
	ID              string            `json:"id"`
	AccountID       string            `json:"accountId"`
	TransactionType TransactionType   `json:"transactionType"`
	Amount          float64           `json:"amount"`
	Description     string            `json:"description"`
	Category        string            `json:"category,omitempty"`
	TransactionDate string            `json:"transactionDate"`
	Status          TransactionStatus `json:"status"`
	CreatedAt       string            `json:"createdAt,omitempty"`
	UpdatedAt       string            `json:"updatedAt,omitempty"`
}

// CreateTransactionRequest is the payload for posting a transaction.
type CreateTransactionRequest struct {
	AccountID       string            `json:"accountId"`
	TransactionType TransactionType   `json:"transactionType"`
	Amount          float64           `json:"amount"`
	Description     string            `json:"description"`
	Category        string            `json:"category,omitempty"`
	TransactionDate string            `json:"transactionDate"`
	Status          TransactionStatus `json:"status"`
}

// UpdateTransactionRequest carries a partial update.
type UpdateTransactionRequest struct {
	Description *string            `json:"description,omitempty"`
	Category    *string            `json:"category,omitempty"`
	Status      *TransactionStatus `json:"status,omitempty"`
}
