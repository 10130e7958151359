package transport

import (
	"log/slog"
	"net/http"
	"strings"
)

// CredentialClearer removes the stored credential and raises the forced
// logout flag so other sessions sharing the vault observe the logout.
type CredentialClearer interface {
	Clear() error
	SetForcedLogout() error
}

// LogoutPublisher notifies in-process subscribers that the session has been
// invalidated. The session broadcast bus satisfies this interface.
type LogoutPublisher interface {
	PublishForcedLogout(reason string)
}

// UnauthorizedMetrics records authorization failure counters.
type UnauthorizedMetrics interface {
	IncrementAuthFailures()
	IncrementForcedLogouts()
}

// UnauthorizedConfig wires the collaborators of the 401 middleware.
type UnauthorizedConfig struct {
	Clearer   CredentialClearer
	Publisher LogoutPublisher
	Metrics   UnauthorizedMetrics
	Logger    *slog.Logger
}

// exemptSuffixes lists request paths whose 401 must not invalidate the
// session: a wrong password on login is the caller's failure, not a stale
// credential.
var exemptSuffixes = []string{"/auth/login", "/auth/register"}

func exempt(path string) bool {
	for _, suffix := range exemptSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// Unauthorized returns middleware that reconciles shared session state when
// a response indicates an authorization failure. On a 401 it clears the
// stored credential, raises the forced-logout flag, and publishes the signal
// to in-process subscribers, then hands the response back unchanged so the
// triggering caller still sees its own error. It issues no requests of its
// own, so a 401 can never cascade into another 401.
func Unauthorized(cfg UnauthorizedConfig) Middleware {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := next.RoundTrip(req)
			if err != nil || resp.StatusCode != http.StatusUnauthorized {
				return resp, err
			}
			if exempt(req.URL.Path) {
				return resp, nil
			}

			ctx := req.Context()
			logger.WarnContext(ctx, "authorization failure, clearing session",
				"method", req.Method,
				"path", req.URL.Path,
			)
			if cfg.Metrics != nil {
				cfg.Metrics.IncrementAuthFailures()
				cfg.Metrics.IncrementForcedLogouts()
			}
			if cfg.Clearer != nil {
				// Both the credential and the flag write must happen even if
				// one fails; the session must never be half cleared.
				if clearErr := cfg.Clearer.Clear(); clearErr != nil {
					logger.ErrorContext(ctx, "failed to clear credential vault",
						"error", clearErr,
					)
				}
				if flagErr := cfg.Clearer.SetForcedLogout(); flagErr != nil {
					logger.ErrorContext(ctx, "failed to set forced logout flag",
						"error", flagErr,
					)
				}
			}
			if cfg.Publisher != nil {
				cfg.Publisher.PublishForcedLogout("unauthorized response from " + req.URL.Path)
			}
			return resp, nil
		})
	}
}
