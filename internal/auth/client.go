// Package auth calls the remote API's authentication endpoints. It holds no
// session state of its own; the session manager owns that.
package auth

import (
	"context"

	"teller/internal/auth/models"
	"teller/internal/transport"
)

// Client wraps the auth endpoints of the banking API.
type Client struct {
	api *transport.Client
}

// NewClient creates an auth client on top of the shared transport.
func NewClient(api *transport.Client) *Client {
	return &Client{api: api}
}

// Login exchanges a credential pair for tokens and the user identity.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.api.Post(ctx, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates a new user. The session is unaffected either way.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) error {
	return c.api.Post(ctx, "/auth/register", req, nil)
}

// Profile fetches the identity behind the attached bearer credential.
func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.api.Get(ctx, "/auth/profile", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Refresh exchanges a refresh token for a new bearer token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*models.RefreshResponse, error) {
	var resp models.RefreshResponse
	if err := c.api.Post(ctx, "/auth/refresh-token", models.RefreshRequest{RefreshToken: refreshToken}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout notifies the server. Best effort; the caller clears local state
// regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	return c.api.Post(ctx, "/auth/logout", nil, nil)
}
