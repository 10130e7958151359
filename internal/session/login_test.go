package session

import (
	"context"

	"go.uber.org/mock/gomock"

	"teller/internal/auth/models"
	dErrors "teller/pkg/domain-errors"
)

func (s *ManagerSuite) TestLoginSuccessPersistsTokenAndIdentity() {
	s.api.EXPECT().
		Login(gomock.Any(), models.LoginRequest{Username: "alice", Password: "secret"}).
		Return(&models.AuthResponse{
			Token: "t1",
			User:  models.User{Username: "alice", Role: models.RoleUser},
		}, nil)

	err := s.manager.Login(context.Background(), "alice", "secret")
	s.Require().NoError(err)

	snap := s.manager.Snapshot()
	s.Require().NotNil(snap.User)
	s.Equal("alice", snap.User.Username)
	s.Equal(StateAuthenticated, snap.State)
	s.False(snap.IsLoading)
	s.Equal("t1", s.vault.Token(), "exact token from the server is persisted")
	s.False(s.manager.IsAdmin())
}

func (s *ManagerSuite) TestLoginPersistsRefreshToken() {
	s.api.EXPECT().
		Login(gomock.Any(), gomock.Any()).
		Return(&models.AuthResponse{
			Token:        "t1",
			RefreshToken: "r1",
			User:         models.User{Username: "alice", Role: models.RoleAdmin},
		}, nil)

	s.Require().NoError(s.manager.Login(context.Background(), "alice", "secret"))
	s.Equal("r1", s.vault.RefreshToken())
	s.True(s.manager.IsAdmin())
}

func (s *ManagerSuite) TestLoginFailureSurfacesServerMessage() {
	s.api.EXPECT().
		Login(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid credentials"))

	err := s.manager.Login(context.Background(), "alice", "wrong")
	s.Require().Error(err)
	s.Equal("Invalid credentials", dErrors.MessageOr(err, "Login failed"))

	snap := s.manager.Snapshot()
	s.Nil(snap.User, "failed login does not mutate the session")
	s.Empty(s.vault.Token(), "failed login does not touch the stored credential")
}

func (s *ManagerSuite) TestLoginFailureFallsBackToGenericMessage() {
	s.api.EXPECT().
		Login(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeNetwork, ""))

	err := s.manager.Login(context.Background(), "alice", "secret")
	s.Require().Error(err)
	s.Equal("Login failed", dErrors.MessageOr(err, "Login failed"))
}

func (s *ManagerSuite) TestLoginFailureKeepsExistingCredential() {
	s.Require().NoError(s.vault.Save("existing", ""))
	s.api.EXPECT().
		Login(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid credentials"))

	_ = s.manager.Login(context.Background(), "alice", "wrong")
	s.Equal("existing", s.vault.Token())
}

func (s *ManagerSuite) TestRegisterDoesNotTouchSession() {
	s.api.EXPECT().
		Register(gomock.Any(), models.RegisterRequest{
			Username: "bob",
			Email:    "bob@example.com",
			Password: "pw",
			Role:     models.RoleUser,
		}).
		Return(nil)

	err := s.manager.Register(context.Background(), models.RegisterRequest{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "pw",
		Role:     models.RoleUser,
	})
	s.Require().NoError(err)

	snap := s.manager.Snapshot()
	s.Nil(snap.User)
	s.Empty(s.vault.Token())
}

func (s *ManagerSuite) TestRegisterConflictSurfacesServerMessage() {
	s.api.EXPECT().
		Register(gomock.Any(), gomock.Any()).
		Return(dErrors.New(dErrors.CodeConflict, "Username already exists"))

	err := s.manager.Register(context.Background(), models.RegisterRequest{Username: "bob"})
	s.Require().Error(err)
	s.Equal("Username already exists", dErrors.MessageOr(err, "Registration failed"))
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *ManagerSuite) TestRegisterFailureFallsBackToGenericMessage() {
	s.api.EXPECT().
		Register(gomock.Any(), gomock.Any()).
		Return(dErrors.New(dErrors.CodeInternal, ""))

	err := s.manager.Register(context.Background(), models.RegisterRequest{Username: "bob"})
	s.Require().Error(err)
	s.Equal("Registration failed", dErrors.MessageOr(err, "Registration failed"))
}

func (s *ManagerSuite) TestIsAdminFalseWhenAnonymous() {
	s.False(s.manager.IsAdmin())
}
