package transport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "teller/pkg/domain-errors"
)

type fakeClearer struct {
	cleared int
	flagged int
}

func (f *fakeClearer) Clear() error           { f.cleared++; return nil }
func (f *fakeClearer) SetForcedLogout() error { f.flagged++; return nil }

type fakePublisher struct {
	reasons []string
}

func (f *fakePublisher) PublishForcedLogout(reason string) {
	f.reasons = append(f.reasons, reason)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestUnauthorizedClearsSessionOn401(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"token expired"}`))
	}))
	defer srv.Close()

	clearer := &fakeClearer{}
	pub := &fakePublisher{}
	c := New(srv.URL, WithMiddleware(Unauthorized(UnauthorizedConfig{
		Clearer:   clearer,
		Publisher: pub,
		Logger:    discardLogger(),
	})))

	err := c.Get(context.Background(), "/accounts", nil)
	require.Error(t, err, "the original failure still reaches the caller")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Equal(t, 1, clearer.cleared)
	assert.Equal(t, 1, clearer.flagged)
	require.Len(t, pub.reasons, 1)
	assert.Contains(t, pub.reasons[0], "/accounts")
}

func TestUnauthorizedExemptsLoginAndRegister(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
	}))
	defer srv.Close()

	clearer := &fakeClearer{}
	c := New(srv.URL, WithMiddleware(Unauthorized(UnauthorizedConfig{
		Clearer: clearer,
		Logger:  discardLogger(),
	})))

	for _, path := range []string{"/auth/login", "/auth/register"} {
		err := c.Post(context.Background(), path, map[string]string{}, nil)
		require.Error(t, err)
	}
	assert.Zero(t, clearer.cleared, "a failed login must not clear another session's credential")
	assert.Zero(t, clearer.flagged)
}

func TestUnauthorizedIgnoresOtherStatuses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	clearer := &fakeClearer{}
	c := New(srv.URL, WithMiddleware(Unauthorized(UnauthorizedConfig{
		Clearer: clearer,
		Logger:  discardLogger(),
	})))

	err := c.Get(context.Background(), "/accounts", nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	assert.Zero(t, clearer.cleared)
}

func TestUnauthorizedPassesThroughTransportErrors(t *testing.T) {
	clearer := &fakeClearer{}
	c := New("http://127.0.0.1:1", WithMiddleware(Unauthorized(UnauthorizedConfig{
		Clearer: clearer,
		Logger:  discardLogger(),
	})))

	err := c.Get(context.Background(), "/accounts", nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNetwork))
	assert.Zero(t, clearer.cleared)
}
