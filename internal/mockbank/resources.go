package mockbank

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	authmodels "teller/internal/auth/models"
	bankmodels "teller/internal/banking/models"
)

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	accounts := make([]bankmodels.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		accounts = append(accounts, account)
	}
	s.mu.Unlock()

	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].AccountNumber < accounts[j].AccountNumber
	})
	writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req bankmodels.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.AccountHolderName == "" || req.AccountNumber == "" || req.AccountType == "" {
		writeMessage(w, http.StatusUnprocessableEntity, "Holder name, number and type are required")
		return
	}

	now := s.now().Format(time.RFC3339)
	account := bankmodels.Account{
		ID:                uuid.New().String(),
		AccountHolderName: req.AccountHolderName,
		AccountNumber:     req.AccountNumber,
		AccountType:       req.AccountType,
		Balance:           req.Balance,
		Status:            req.Status,
		InterestRate:      req.InterestRate,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if account.Status == "" {
		account.Status = bankmodels.AccountStatusActive
	}

	s.mu.Lock()
	s.accounts[account.ID] = account
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, account)
}

func validPaymentMethod(m bankmodels.PaymentMethod) bool {
	switch m {
	case bankmodels.PaymentMethodPayPal, bankmodels.PaymentMethodCreditCard, bankmodels.PaymentMethodBankTransfer:
		return true
	}
	return false
}

func (s *Server) accountByNumber(number string) (bankmodels.Account, bool) {
	for _, account := range s.accounts {
		if account.AccountNumber == number {
			return account, true
		}
	}
	return bankmodels.Account{}, false
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req bankmodels.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Amount <= 0 {
		writeMessage(w, http.StatusUnprocessableEntity, "Amount must be positive")
		return
	}
	if !validPaymentMethod(req.PaymentMethod) {
		writeMessage(w, http.StatusUnprocessableEntity, "Unknown payment method")
		return
	}
	if req.FromAccountNumber == req.ToAccountNumber {
		writeMessage(w, http.StatusUnprocessableEntity, "Source and destination must differ")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	from, ok := s.accountByNumber(req.FromAccountNumber)
	if !ok {
		writeMessage(w, http.StatusNotFound, "Source account not found")
		return
	}
	to, ok := s.accountByNumber(req.ToAccountNumber)
	if !ok {
		writeMessage(w, http.StatusNotFound, "Destination account not found")
		return
	}
	if from.Status == bankmodels.AccountStatusFrozen || to.Status == bankmodels.AccountStatusFrozen {
		writeMessage(w, http.StatusConflict, "Account is frozen")
		return
	}
	if from.Balance < req.Amount {
		writeMessage(w, http.StatusConflict, "Insufficient funds")
		return
	}

	now := s.now().Format(time.RFC3339)
	from.Balance -= req.Amount
	from.UpdatedAt = now
	to.Balance += req.Amount
	to.UpdatedAt = now
	s.accounts[from.ID] = from
	s.accounts[to.ID] = to

	debit := bankmodels.Transaction{
		ID:              uuid.New().String(),
		AccountID:       from.ID,
		TransactionType: bankmodels.TransactionTypeDebit,
		Amount:          req.Amount,
		Description:     "Transfer to " + req.ToAccountNumber + " via " + string(req.PaymentMethod),
		TransactionDate: now,
		Status:          bankmodels.TransactionStatusCompleted,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	credit := bankmodels.Transaction{
		ID:              uuid.New().String(),
		AccountID:       to.ID,
		TransactionType: bankmodels.TransactionTypeCredit,
		Amount:          req.Amount,
		Description:     "Transfer from " + req.FromAccountNumber + " via " + string(req.PaymentMethod),
		TransactionDate: now,
		Status:          bankmodels.TransactionStatusCompleted,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.transactions[debit.ID] = debit
	s.transactions[credit.ID] = credit

	writeMessage(w, http.StatusOK, "Transfer successful")
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	account, ok := s.accounts[chi.URLParam(r, "id")]
	s.mu.Unlock()
	if !ok {
		writeMessage(w, http.StatusNotFound, "Account not found")
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req bankmodels.UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[chi.URLParam(r, "id")]
	if !ok {
		writeMessage(w, http.StatusNotFound, "Account not found")
		return
	}
	if req.AccountHolderName != nil {
		account.AccountHolderName = *req.AccountHolderName
	}
	if req.AccountType != nil {
		account.AccountType = *req.AccountType
	}
	if req.Balance != nil {
		account.Balance = *req.Balance
	}
	if req.Status != nil {
		account.Status = *req.Status
	}
	if req.InterestRate != nil {
		account.InterestRate = *req.InterestRate
	}
	account.UpdatedAt = s.now().Format(time.RFC3339)
	s.accounts[account.ID] = account

	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; !ok {
		writeMessage(w, http.StatusNotFound, "Account not found")
		return
	}
	delete(s.accounts, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAccountTransactions(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	s.mu.Lock()
	if _, ok := s.accounts[accountID]; !ok {
		s.mu.Unlock()
		writeMessage(w, http.StatusNotFound, "Account not found")
		return
	}
	transactions := make([]bankmodels.Transaction, 0)
	for _, tx := range s.transactions {
		if tx.AccountID == accountID {
			transactions = append(transactions, tx)
		}
	}
	s.mu.Unlock()

	sortTransactions(transactions)
	writeJSON(w, http.StatusOK, transactions)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	transactions := make([]bankmodels.Transaction, 0, len(s.transactions))
	for _, tx := range s.transactions {
		transactions = append(transactions, tx)
	}
	s.mu.Unlock()

	sortTransactions(transactions)
	writeJSON(w, http.StatusOK, transactions)
}

// sortTransactions orders newest first, matching the deployed API.
func sortTransactions(transactions []bankmodels.Transaction) {
	sort.Slice(transactions, func(i, j int) bool {
		return transactions[i].TransactionDate > transactions[j].TransactionDate
	})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req bankmodels.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Amount <= 0 {
		writeMessage(w, http.StatusUnprocessableEntity, "Amount must be positive")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[req.AccountID]
	if !ok {
		writeMessage(w, http.StatusNotFound, "Account not found")
		return
	}
	if account.Status == bankmodels.AccountStatusFrozen {
		writeMessage(w, http.StatusConflict, "Account is frozen")
		return
	}

	now := s.now().Format(time.RFC3339)
	tx := bankmodels.Transaction{
		ID:              uuid.New().String(),
		AccountID:       req.AccountID,
		TransactionType: req.TransactionType,
		Amount:          req.Amount,
		Description:     req.Description,
		Category:        req.Category,
		TransactionDate: req.TransactionDate,
		Status:          req.Status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if tx.TransactionDate == "" {
		tx.TransactionDate = now
	}
	if tx.Status == "" {
		tx.Status = bankmodels.TransactionStatusCompleted
	}
	if tx.Status == bankmodels.TransactionStatusCompleted {
		switch tx.TransactionType {
		case bankmodels.TransactionTypeCredit:
			account.Balance += tx.Amount
		case bankmodels.TransactionTypeDebit:
			account.Balance -= tx.Amount
		}
		account.UpdatedAt = now
		s.accounts[account.ID] = account
	}
	s.transactions[tx.ID] = tx

	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	tx, ok := s.transactions[chi.URLParam(r, "id")]
	s.mu.Unlock()
	if !ok {
		writeMessage(w, http.StatusNotFound, "Transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req bankmodels.UpdateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[chi.URLParam(r, "id")]
	if !ok {
		writeMessage(w, http.StatusNotFound, "Transaction not found")
		return
	}
	if req.Description != nil {
		tx.Description = *req.Description
	}
	if req.Category != nil {
		tx.Category = *req.Category
	}
	if req.Status != nil {
		tx.Status = *req.Status
	}
	tx.UpdatedAt = s.now().Format(time.RFC3339)
	s.transactions[tx.ID] = tx

	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[id]; !ok {
		writeMessage(w, http.StatusNotFound, "Transaction not found")
		return
	}
	delete(s.transactions, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	users := make([]authmodels.User, 0, len(s.users))
	for _, stored := range s.users {
		users = append(users, stored.user)
	}
	s.mu.Unlock()

	sort.Slice(users, func(i, j int) bool {
		return users[i].Username < users[j].Username
	})
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	stored, ok := s.users[chi.URLParam(r, "username")]
	s.mu.Unlock()
	if !ok {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, stored.user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; !ok {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	delete(s.users, username)
	w.WriteHeader(http.StatusNoContent)
}
