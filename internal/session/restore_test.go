package session

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/mock/gomock"

	"teller/internal/auth/models"
	dErrors "teller/pkg/domain-errors"
)

func signedToken(s *ManagerSuite, expiresAt time.Time) string {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
		"exp": expiresAt.Unix(),
	})
	signed, err := tok.SignedString([]byte("test-key"))
	s.Require().NoError(err)
	return signed
}

func (s *ManagerSuite) TestRestoreWithoutTokenIsAnonymous() {
	snap := s.manager.Restore(context.Background())

	s.Equal(StateAnonymous, snap.State)
	s.Nil(snap.User)
	s.False(snap.IsLoading)
}

func (s *ManagerSuite) TestRestoreWithTokenFetchesProfile() {
	s.Require().NoError(s.vault.Save("t1", ""))
	s.api.EXPECT().
		Profile(gomock.Any()).
		Return(&models.User{Username: "alice", Role: models.RoleUser}, nil)

	snap := s.manager.Restore(context.Background())

	s.Equal(StateAuthenticated, snap.State)
	s.Require().NotNil(snap.User)
	s.Equal("alice", snap.User.Username)
}

func (s *ManagerSuite) TestRestoreUnauthorizedBecomesAnonymous() {
	s.Require().NoError(s.vault.Save("stale", ""))
	s.api.EXPECT().
		Profile(gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeUnauthorized, "token expired"))

	snap := s.manager.Restore(context.Background())

	s.Equal(StateAnonymous, snap.State)
	s.Nil(snap.User)
}

func (s *ManagerSuite) TestRestoreNetworkFailureBecomesAnonymous() {
	s.Require().NoError(s.vault.Save("t1", ""))
	s.api.EXPECT().
		Profile(gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeNetwork, "request failed"))

	snap := s.manager.Restore(context.Background())

	s.Equal(StateAnonymous, snap.State)
	s.Nil(snap.User)
	s.Equal("t1", s.vault.Token(), "a transient failure does not discard the credential")
}

func (s *ManagerSuite) TestRestoreIsIdempotent() {
	s.Require().NoError(s.vault.Save("t1", ""))
	s.api.EXPECT().
		Profile(gomock.Any()).
		Return(&models.User{Username: "alice"}, nil).
		Times(2)

	first := s.manager.Restore(context.Background())
	second := s.manager.Restore(context.Background())

	s.Equal(first.State, second.State)
	s.Equal("alice", second.User.Username)
}

func (s *ManagerSuite) TestConcurrentRestoresAreDeduplicated() {
	s.Require().NoError(s.vault.Save("t1", ""))

	entered := make(chan struct{})
	release := make(chan struct{})
	s.api.EXPECT().
		Profile(gomock.Any()).
		DoAndReturn(func(context.Context) (*models.User, error) {
			close(entered)
			<-release
			return &models.User{Username: "alice"}, nil
		}).
		Times(1)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.manager.Restore(context.Background())
	}()
	<-entered
	go func() {
		defer wg.Done()
		s.manager.Restore(context.Background())
	}()
	// Give the second restore time to join the in-flight one.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	s.Equal("alice", s.manager.Snapshot().User.Username)
}

func (s *ManagerSuite) TestStaleRestoreDoesNotOverwriteNewerLogin() {
	s.Require().NoError(s.vault.Save("old-token", ""))

	entered := make(chan struct{})
	release := make(chan struct{})
	s.api.EXPECT().
		Profile(gomock.Any()).
		DoAndReturn(func(context.Context) (*models.User, error) {
			close(entered)
			<-release
			// Identity belonging to the old, superseded credential.
			return &models.User{Username: "bob"}, nil
		})

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.manager.Restore(context.Background())
	}()
	<-entered

	// A login completes while the restore is still in flight.
	s.api.EXPECT().
		Login(gomock.Any(), gomock.Any()).
		Return(&models.AuthResponse{Token: "t-new", User: models.User{Username: "alice"}}, nil)
	s.Require().NoError(s.manager.Login(context.Background(), "alice", "pw"))

	close(release)
	<-done

	snap := s.manager.Snapshot()
	s.Require().NotNil(snap.User)
	s.Equal("alice", snap.User.Username, "stale restore must not clobber the newer session")
	s.Equal("t-new", s.vault.Token())
}

func (s *ManagerSuite) TestRestoreRefreshesExpiredToken() {
	expired := signedToken(s, time.Now().Add(-time.Hour))
	s.Require().NoError(s.vault.Save(expired, "r1"))

	s.api.EXPECT().
		Refresh(gomock.Any(), "r1").
		Return(&models.RefreshResponse{Token: "t-fresh"}, nil)
	s.api.EXPECT().
		Profile(gomock.Any()).
		Return(&models.User{Username: "alice"}, nil)

	snap := s.manager.Restore(context.Background())

	s.Equal(StateAuthenticated, snap.State)
	s.Equal("t-fresh", s.vault.Token())
	s.Equal("r1", s.vault.RefreshToken(), "refresh token survives the exchange")
}

func (s *ManagerSuite) TestRestoreExpiredTokenWithoutRefreshIsAnonymous() {
	expired := signedToken(s, time.Now().Add(-time.Hour))
	s.Require().NoError(s.vault.Save(expired, ""))

	snap := s.manager.Restore(context.Background())

	s.Equal(StateAnonymous, snap.State)
}

func (s *ManagerSuite) TestRestoreFailedRefreshIsAnonymous() {
	expired := signedToken(s, time.Now().Add(-time.Hour))
	s.Require().NoError(s.vault.Save(expired, "r1"))

	s.api.EXPECT().
		Refresh(gomock.Any(), "r1").
		Return(nil, dErrors.New(dErrors.CodeUnauthorized, "refresh token revoked"))

	snap := s.manager.Restore(context.Background())

	s.Equal(StateAnonymous, snap.State)
}

func (s *ManagerSuite) TestRestoreTreatsOpaqueTokenAsValid() {
	s.Require().NoError(s.vault.Save("opaque-session-token", ""))
	s.api.EXPECT().
		Profile(gomock.Any()).
		Return(&models.User{Username: "alice"}, nil)

	snap := s.manager.Restore(context.Background())
	s.Equal(StateAuthenticated, snap.State)
}

func (s *ManagerSuite) TestRestoreValidJWTSkipsRefresh() {
	valid := signedToken(s, time.Now().Add(time.Hour))
	s.Require().NoError(s.vault.Save(valid, "r1"))
	s.api.EXPECT().
		Profile(gomock.Any()).
		Return(&models.User{Username: "alice"}, nil)

	snap := s.manager.Restore(context.Background())
	s.Equal(StateAuthenticated, snap.State)
}
