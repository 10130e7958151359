package session

import (
	"context"
	"errors"

	"go.uber.org/mock/gomock"

	"teller/internal/auth/models"
)

func (s *ManagerSuite) login(user models.User, token string) {
	s.api.EXPECT().
		Login(gomock.Any(), gomock.Any()).
		Return(&models.AuthResponse{Token: token, User: user}, nil)
	s.Require().NoError(s.manager.Login(context.Background(), user.Username, "pw"))
}

func (s *ManagerSuite) TestLogoutClearsEverything() {
	s.login(models.User{Username: "alice"}, "t1")
	s.api.EXPECT().Logout(gomock.Any()).Return(nil)

	s.manager.Logout(context.Background())

	snap := s.manager.Snapshot()
	s.Nil(snap.User)
	s.Equal(StateAnonymous, snap.State)
	s.Empty(s.vault.Token())
	s.Empty(s.vault.RefreshToken())
}

func (s *ManagerSuite) TestLogoutClearsLocalStateEvenWhenServerFails() {
	s.login(models.User{Username: "alice"}, "t1")
	s.api.EXPECT().Logout(gomock.Any()).Return(errors.New("connection reset"))

	s.manager.Logout(context.Background())

	s.Nil(s.manager.Snapshot().User)
	s.Empty(s.vault.Token(), "credential is gone regardless of the server outcome")
}
