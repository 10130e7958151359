// Package mockbank is an in-memory implementation of the banking API the
// client consumes. It exists so the CLI and the e2e tests exercise a real
// HTTP boundary: bcrypt-checked logins, short-lived HS256 bearer tokens,
// and 401s on bad or revoked credentials. Not part of the SDK surface.
package mockbank

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mssola/useragent"
	"golang.org/x/crypto/bcrypt"

	authmodels "teller/internal/auth/models"
	bankmodels "teller/internal/banking/models"
)

type storedUser struct {
	user         authmodels.User
	passwordHash []byte
}

// Server holds the in-memory state behind the API.
type Server struct {
	mu            sync.Mutex
	users         map[string]*storedUser
	accounts      map[string]bankmodels.Account
	transactions  map[string]bankmodels.Transaction
	refreshTokens map[string]string
	revokedJTIs   map[string]struct{}

	signingKey []byte
	tokenTTL   time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithSigningKey overrides the JWT signing key.
func WithSigningKey(key []byte) Option {
	return func(s *Server) {
		if len(key) > 0 {
			s.signingKey = key
		}
	}
}

// WithTokenTTL sets the bearer token lifetime. Default 15 minutes.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithClock injects a time source for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// NewServer creates a server seeded with the well-known test users
// alice/password123 (USER) and admin/admin123 (ADMIN).
func NewServer(opts ...Option) *Server {
	s := &Server{
		users:         make(map[string]*storedUser),
		accounts:      make(map[string]bankmodels.Account),
		transactions:  make(map[string]bankmodels.Transaction),
		refreshTokens: make(map[string]string),
		revokedJTIs:   make(map[string]struct{}),
		signingKey:    []byte("mockbank-dev-key"),
		tokenTTL:      15 * time.Minute,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.seed()
	return s
}

func (s *Server) seed() {
	s.mustAddUser("alice", "alice@example.com", "password123", authmodels.RoleUser)
	s.mustAddUser("admin", "admin@example.com", "admin123", authmodels.RoleAdmin)

	now := s.now().Format(time.RFC3339)
	checking := bankmodels.Account{
		ID:                uuid.New().String(),
		AccountHolderName: "Alice Example",
		AccountNumber:     "1000001",
		AccountType:       bankmodels.AccountTypeChecking,
		Balance:           1250.75,
		Status:            bankmodels.AccountStatusActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	s.accounts[checking.ID] = checking
	tx := bankmodels.Transaction{
		ID:              uuid.New().String(),
		AccountID:       checking.ID,
		TransactionType: bankmodels.TransactionTypeCredit,
		Amount:          1250.75,
		Description:     "Opening balance",
		TransactionDate: now,
		Status:          bankmodels.TransactionStatusCompleted,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.transactions[tx.ID] = tx
}

func (s *Server) mustAddUser(username, email, password string, role authmodels.Role) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	now := s.now().Format(time.RFC3339)
	s.users[username] = &storedUser{
		user: authmodels.User{
			ID:        uuid.New().String(),
			Username:  username,
			Email:     email,
			Role:      role,
			Status:    authmodels.UserStatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		},
		passwordHash: hash,
	}
}

// Router mounts the API under /api, mirroring the deployed service layout.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": "mockbank",
		})
	})
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/refresh-token", s.handleRefresh)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/auth/profile", s.handleProfile)
			r.Post("/auth/logout", s.handleLogout)

			r.Get("/accounts", s.handleListAccounts)
			r.Post("/accounts", s.handleCreateAccount)
			r.Post("/accounts/transfer", s.handleTransfer)
			r.Get("/accounts/{id}", s.handleGetAccount)
			r.Patch("/accounts/{id}", s.handleUpdateAccount)
			r.Delete("/accounts/{id}", s.handleDeleteAccount)
			r.Get("/accounts/{id}/transactions", s.handleAccountTransactions)

			r.Get("/transactions", s.handleListTransactions)
			r.Post("/transactions", s.handleCreateTransaction)
			r.Get("/transactions/{id}", s.handleGetTransaction)
			r.Patch("/transactions/{id}", s.handleUpdateTransaction)
			r.Delete("/transactions/{id}", s.handleDeleteTransaction)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAdmin)
				r.Get("/users", s.handleListUsers)
				r.Get("/users/{username}", s.handleGetUser)
				r.Delete("/users/{username}", s.handleDeleteUser)
			})
		})
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

type claimsKey struct{}

func (s *Server) issueToken(username string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": username,
		"jti": uuid.New().String(),
		"iat": now.Unix(),
		"exp": now.Add(s.tokenTTL).Unix(),
	})
	return token.SignedString(s.signingKey)
}

func (s *Server) parseToken(tokenString string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "Missing or invalid Authorization header")
			return
		}
		claims, err := s.parseToken(tokenString)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		if jti, _ := claims["jti"].(string); jti != "" {
			s.mu.Lock()
			_, revoked := s.revokedJTIs[jti]
			s.mu.Unlock()
			if revoked {
				writeMessage(w, http.StatusUnauthorized, "Token has been revoked")
				return
			}
		}
		ctx := contextWithClaims(r.Context(), claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.currentUser(r)
		if !ok || user.Role != authmodels.RoleAdmin {
			writeMessage(w, http.StatusForbidden, "Admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) currentUser(r *http.Request) (authmodels.User, bool) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		return authmodels.User{}, false
	}
	username, _ := claims["sub"].(string)
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.users[username]
	if !ok {
		return authmodels.User{}, false
	}
	return stored.user, true
}

// deviceLabel condenses the client User-Agent into something readable for
// the login audit log.
func deviceLabel(r *http.Request) string {
	raw := r.Header.Get("User-Agent")
	if raw == "" {
		return "unknown"
	}
	ua := useragent.New(raw)
	name, version := ua.Browser()
	if name == "" {
		return raw
	}
	label := name
	if version != "" {
		label += " " + version
	}
	if os := ua.OS(); os != "" {
		label += " on " + os
	}
	return label
}
