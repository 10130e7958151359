package transport

import "net/http"

// TokenSource yields the current bearer credential. An empty string means no
// credential is stored. The credential vault satisfies this interface.
type TokenSource interface {
	Token() string
}

// Bearer returns middleware that attaches the stored bearer credential to
// every outgoing request. The token is read from the source immediately
// before each round trip, never cached at construction time, so a credential
// changed by another session is picked up on the next call. When no token is
// stored, any stale Authorization header is stripped.
func Bearer(source TokenSource) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripFunc(func(req *http.Request) (*http.Response, error) {
			clone := req.Clone(req.Context())
			if source == nil {
				clone.Header.Del("Authorization")
				return next.RoundTrip(clone)
			}
			if token := source.Token(); token != "" {
				clone.Header.Set("Authorization", "Bearer "+token)
			} else {
				clone.Header.Del("Authorization")
			}
			return next.RoundTrip(clone)
		})
	}
}
