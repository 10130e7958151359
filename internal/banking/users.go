package banking

import (
	"context"

	authmodels "teller/internal/auth/models"
	"teller/internal/transport"
)

// UsersClient calls the admin-only /users endpoints.
type UsersClient struct {
	api *transport.Client
}

// NewUsersClient creates a users client on the shared transport.
func NewUsersClient(api *transport.Client) *UsersClient {
	return &UsersClient{api: api}
}

// List returns all users. Requires an ADMIN credential; the server answers
// 403 otherwise.
func (c *UsersClient) List(ctx context.Context) ([]authmodels.User, error) {
	var users []authmodels.User
	if err := c.api.Get(ctx, "/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Get returns one user by username.
func (c *UsersClient) Get(ctx context.Context, username string) (*authmodels.User, error) {
	var user authmodels.User
	if err := c.api.Get(ctx, "/users/"+username, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete removes a user by username.
func (c *UsersClient) Delete(ctx context.Context, username string) error {
	return c.api.Delete(ctx, "/users/"+username)
}
