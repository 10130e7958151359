package mockbank

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	authmodels "teller/internal/auth/models"
	bankmodels "teller/internal/banking/models"
)

type ServerSuite struct {
	suite.Suite

	ts *httptest.Server
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func (s *ServerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.ts = httptest.NewServer(NewServer(WithLogger(logger)).Router())
}

func (s *ServerSuite) TearDownTest() {
	s.ts.Close()
}

func (s *ServerSuite) request(method, path, token string, body any, out any) int {
	s.T().Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(s.T(), err)
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, s.ts.URL+"/api"+path, reader)
	require.NoError(s.T(), err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(s.T(), err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(s.T(), json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (s *ServerSuite) login(username, password string) authmodels.AuthResponse {
	s.T().Helper()

	var auth authmodels.AuthResponse
	status := s.request(http.MethodPost, "/auth/login", "",
		authmodels.LoginRequest{Username: username, Password: password}, &auth)
	require.Equal(s.T(), http.StatusOK, status)
	return auth
}

func (s *ServerSuite) TestLoginIssuesTokenAndUser() {
	auth := s.login("alice", "password123")

	s.NotEmpty(auth.Token)
	s.NotEmpty(auth.RefreshToken)
	s.Require().NotNil(auth.User)
	s.Equal("alice", auth.User.Username)
	s.Equal(authmodels.RoleUser, auth.User.Role)
}

func (s *ServerSuite) TestLoginRejectsBadPassword() {
	var body map[string]string
	status := s.request(http.MethodPost, "/auth/login", "",
		authmodels.LoginRequest{Username: "alice", Password: "wrong"}, &body)

	s.Equal(http.StatusUnauthorized, status)
	s.Equal("Invalid username or password", body["message"])
}

func (s *ServerSuite) TestRegisterConflictsOnDuplicateUsername() {
	req := authmodels.RegisterRequest{
		Username: "alice",
		Email:    "other@example.com",
		Password: "secret12",
	}

	var body map[string]string
	status := s.request(http.MethodPost, "/auth/register", "", req, &body)

	s.Equal(http.StatusConflict, status)
	s.Equal("Username already exists", body["message"])
}

func (s *ServerSuite) TestProfileRequiresValidToken() {
	status := s.request(http.MethodGet, "/auth/profile", "garbage", nil, nil)
	s.Equal(http.StatusUnauthorized, status)

	auth := s.login("alice", "password123")
	var user authmodels.User
	status = s.request(http.MethodGet, "/auth/profile", auth.Token, nil, &user)
	s.Equal(http.StatusOK, status)
	s.Equal("alice", user.Username)
}

func (s *ServerSuite) TestLogoutRevokesToken() {
	auth := s.login("alice", "password123")

	status := s.request(http.MethodPost, "/auth/logout", auth.Token, nil, nil)
	s.Require().Equal(http.StatusOK, status)

	var body map[string]string
	status = s.request(http.MethodGet, "/auth/profile", auth.Token, nil, &body)
	s.Equal(http.StatusUnauthorized, status)
	s.Equal("Token has been revoked", body["message"])
}

func (s *ServerSuite) TestRefreshTokenIssuesNewBearer() {
	auth := s.login("alice", "password123")

	var refreshed authmodels.RefreshResponse
	status := s.request(http.MethodPost, "/auth/refresh-token", "",
		authmodels.RefreshRequest{RefreshToken: auth.RefreshToken}, &refreshed)

	s.Equal(http.StatusOK, status)
	s.NotEmpty(refreshed.Token)
}

func (s *ServerSuite) TestExpiredTokenIsRejected() {
	past := time.Now().Add(-time.Hour)
	srv := NewServer(
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(func() time.Time { return past }),
		WithTokenTTL(time.Minute),
	)
	token, err := srv.issueToken("alice")
	s.Require().NoError(err)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/auth/profile", nil)
	s.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+token)
	// Restore the real clock so validation sees the token as expired.
	srv.now = time.Now

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *ServerSuite) TestUsersEndpointIsAdminOnly() {
	alice := s.login("alice", "password123")
	status := s.request(http.MethodGet, "/users", alice.Token, nil, nil)
	s.Equal(http.StatusForbidden, status)

	admin := s.login("admin", "admin123")
	var users []authmodels.User
	status = s.request(http.MethodGet, "/users", admin.Token, nil, &users)
	s.Equal(http.StatusOK, status)
	s.Len(users, 2)
}

func (s *ServerSuite) TestCompletedTransactionMovesBalance() {
	auth := s.login("alice", "password123")

	var accounts []bankmodels.Account
	status := s.request(http.MethodGet, "/accounts", auth.Token, nil, &accounts)
	s.Require().Equal(http.StatusOK, status)
	s.Require().Len(accounts, 1)
	before := accounts[0].Balance

	var tx bankmodels.Transaction
	status = s.request(http.MethodPost, "/transactions", auth.Token,
		bankmodels.CreateTransactionRequest{
			AccountID:       accounts[0].ID,
			TransactionType: bankmodels.TransactionTypeDebit,
			Amount:          50,
			Description:     "Coffee",
		}, &tx)
	s.Require().Equal(http.StatusCreated, status)
	s.Equal(bankmodels.TransactionStatusCompleted, tx.Status)

	var account bankmodels.Account
	status = s.request(http.MethodGet, "/accounts/"+accounts[0].ID, auth.Token, nil, &account)
	s.Require().Equal(http.StatusOK, status)
	s.InDelta(before-50, account.Balance, 0.001)
}

func (s *ServerSuite) TestTransferMovesMoneyAndRecordsBothLegs() {
	auth := s.login("alice", "password123")

	var savings bankmodels.Account
	status := s.request(http.MethodPost, "/accounts", auth.Token,
		bankmodels.CreateAccountRequest{
			AccountHolderName: "Alice Example",
			AccountNumber:     "1000002",
			AccountType:       bankmodels.AccountTypeSavings,
		}, &savings)
	s.Require().Equal(http.StatusCreated, status)

	var body map[string]string
	status = s.request(http.MethodPost, "/accounts/transfer", auth.Token,
		bankmodels.TransferRequest{
			FromAccountNumber: "1000001",
			ToAccountNumber:   "1000002",
			Amount:            200,
			PaymentMethod:     bankmodels.PaymentMethodBankTransfer,
		}, &body)
	s.Require().Equal(http.StatusOK, status)
	s.Equal("Transfer successful", body["message"])

	var accounts []bankmodels.Account
	status = s.request(http.MethodGet, "/accounts", auth.Token, nil, &accounts)
	s.Require().Equal(http.StatusOK, status)
	balances := map[string]float64{}
	for _, account := range accounts {
		balances[account.AccountNumber] = account.Balance
	}
	s.InDelta(1050.75, balances["1000001"], 0.001)
	s.InDelta(200, balances["1000002"], 0.001)

	var transactions []bankmodels.Transaction
	status = s.request(http.MethodGet, "/accounts/"+savings.ID+"/transactions", auth.Token, nil, &transactions)
	s.Require().Equal(http.StatusOK, status)
	s.Require().Len(transactions, 1)
	s.Equal(bankmodels.TransactionTypeCredit, transactions[0].TransactionType)
	s.Contains(transactions[0].Description, "1000001")
}

func (s *ServerSuite) TestTransferRejectsInsufficientFunds() {
	auth := s.login("alice", "password123")

	status := s.request(http.MethodPost, "/accounts", auth.Token,
		bankmodels.CreateAccountRequest{
			AccountHolderName: "Alice Example",
			AccountNumber:     "1000002",
			AccountType:       bankmodels.AccountTypeSavings,
		}, nil)
	s.Require().Equal(http.StatusCreated, status)

	var body map[string]string
	status = s.request(http.MethodPost, "/accounts/transfer", auth.Token,
		bankmodels.TransferRequest{
			FromAccountNumber: "1000002",
			ToAccountNumber:   "1000001",
			Amount:            50,
			PaymentMethod:     bankmodels.PaymentMethodPayPal,
		}, &body)

	s.Equal(http.StatusConflict, status)
	s.Equal("Insufficient funds", body["message"])
}

func (s *ServerSuite) TestTransferRejectsUnknownPaymentMethod() {
	auth := s.login("alice", "password123")

	var body map[string]string
	status := s.request(http.MethodPost, "/accounts/transfer", auth.Token,
		bankmodels.TransferRequest{
			FromAccountNumber: "1000001",
			ToAccountNumber:   "1000002",
			Amount:            10,
			PaymentMethod:     "IOU",
		}, &body)

	s.Equal(http.StatusUnprocessableEntity, status)
	s.Equal("Unknown payment method", body["message"])
}

func (s *ServerSuite) TestAccountTransactionsScopedToAccount() {
	auth := s.login("alice", "password123")

	var created bankmodels.Account
	status := s.request(http.MethodPost, "/accounts", auth.Token,
		bankmodels.CreateAccountRequest{
			AccountHolderName: "Alice Example",
			AccountNumber:     "1000002",
			AccountType:       bankmodels.AccountTypeSavings,
		}, &created)
	s.Require().Equal(http.StatusCreated, status)

	var transactions []bankmodels.Transaction
	status = s.request(http.MethodGet, "/accounts/"+created.ID+"/transactions", auth.Token, nil, &transactions)
	s.Equal(http.StatusOK, status)
	s.Empty(transactions)
}
