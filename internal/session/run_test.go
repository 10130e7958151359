package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/mock/gomock"

	"teller/internal/auth/models"
)

type redirectRecorder struct {
	mu    sync.Mutex
	paths []string
	seen  chan string
}

func newRedirectRecorder() *redirectRecorder {
	return &redirectRecorder{seen: make(chan string, 4)}
}

func (r *redirectRecorder) record(path string) {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
	select {
	case r.seen <- path:
	default:
	}
}

func (r *redirectRecorder) wait(s *ManagerSuite) string {
	select {
	case path := <-r.seen:
		return path
	case <-time.After(2 * time.Second):
		s.Fail("expected a redirect")
		return ""
	}
}

func (s *ManagerSuite) TestForcedLogoutSignalClearsSessionAndRedirects() {
	recorder := newRedirectRecorder()
	s.manager = NewManager(s.api, s.vault,
		WithLogger(s.manager.logger),
		WithRedirect(recorder.record),
	)
	s.login(models.User{Username: "alice"}, "t1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.manager.Run(ctx)
	// Let Run subscribe before publishing.
	time.Sleep(20 * time.Millisecond)

	s.manager.Bus().PublishForcedLogout("401 on /accounts")

	s.Equal("/login", recorder.wait(s))
	s.Require().Eventually(func() bool {
		return s.manager.Snapshot().User == nil
	}, 2*time.Second, 10*time.Millisecond)
	s.Empty(s.vault.Token())
}

func (s *ManagerSuite) TestForcedLogoutFlagFromAnotherSession() {
	recorder := newRedirectRecorder()
	s.manager = NewManager(s.api, s.vault,
		WithLogger(s.manager.logger),
		WithRedirect(recorder.record),
		WithLoginPath("/signin"),
	)
	s.login(models.User{Username: "alice"}, "t1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.manager.Run(ctx)
	time.Sleep(20 * time.Millisecond)

	// Another session sharing the vault raises the flag, the way the 401
	// middleware does.
	s.Require().NoError(s.vault.SetForcedLogout())

	s.Equal("/signin", recorder.wait(s))
	s.Require().Eventually(func() bool {
		return s.manager.Snapshot().User == nil
	}, 2*time.Second, 10*time.Millisecond)
	s.False(s.vault.ConsumeForcedLogout(), "flag is consumed, not left to re-trigger")
}

func (s *ManagerSuite) TestCredentialChangeTriggersRestore() {
	recorder := newRedirectRecorder()
	s.manager = NewManager(s.api, s.vault,
		WithLogger(s.manager.logger),
		WithRedirect(recorder.record),
	)

	restored := make(chan struct{})
	s.api.EXPECT().
		Profile(gomock.Any()).
		DoAndReturn(func(context.Context) (*models.User, error) {
			defer close(restored)
			return &models.User{Username: "alice"}, nil
		})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.manager.Run(ctx)
	time.Sleep(20 * time.Millisecond)

	// A login performed by another session lands in the shared vault.
	s.Require().NoError(s.vault.Save("t-from-other-tab", ""))

	select {
	case <-restored:
	case <-time.After(2 * time.Second):
		s.Fail("expected the credential change to trigger a restore")
	}
	s.Require().Eventually(func() bool {
		snap := s.manager.Snapshot()
		return snap.User != nil && snap.User.Username == "alice"
	}, 2*time.Second, 10*time.Millisecond)
}
