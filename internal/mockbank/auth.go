package mockbank

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	authmodels "teller/internal/auth/models"
)

func contextWithClaims(ctx context.Context, claims jwt.MapClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

func claimsFromContext(ctx context.Context) (jwt.MapClaims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(jwt.MapClaims)
	return claims, ok
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req authmodels.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	stored, ok := s.users[req.Username]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(stored.passwordHash, []byte(req.Password)) != nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if stored.user.Status != authmodels.UserStatusActive {
		writeMessage(w, http.StatusForbidden, "Account is inactive")
		return
	}

	token, err := s.issueToken(req.Username)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	refresh := uuid.New().String()
	s.mu.Lock()
	s.refreshTokens[refresh] = req.Username
	s.mu.Unlock()

	s.logger.InfoContext(r.Context(), "user logged in",
		slog.String("username", req.Username),
		slog.String("device", deviceLabel(r)),
	)

	writeJSON(w, http.StatusOK, authmodels.AuthResponse{
		Token:        token,
		RefreshToken: refresh,
		User:         stored.user,
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req authmodels.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusUnprocessableEntity, "Username, email and password are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[req.Username]; exists {
		writeMessage(w, http.StatusConflict, "Username already exists")
		return
	}
	for _, stored := range s.users {
		if stored.user.Email == req.Email {
			writeMessage(w, http.StatusConflict, "Email already registered")
			return
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to store credentials")
		return
	}
	now := s.now().Format(time.RFC3339)
	user := authmodels.User{
		ID:        uuid.New().String(),
		Username:  req.Username,
		Email:     req.Email,
		Role:      authmodels.RoleUser,
		Status:    authmodels.UserStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.users[req.Username] = &storedUser{user: user, passwordHash: hash}

	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req authmodels.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	username, ok := s.refreshTokens[req.RefreshToken]
	s.mu.Unlock()
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	token, err := s.issueToken(username)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	writeJSON(w, http.StatusOK, authmodels.RefreshResponse{Token: token})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unknown user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFromContext(r.Context())
	if jti, _ := claims["jti"].(string); jti != "" {
		s.mu.Lock()
		s.revokedJTIs[jti] = struct{}{}
		s.mu.Unlock()
	}
	writeMessage(w, http.StatusOK, "Logged out")
}
