package transport

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestID returns middleware that stamps every outgoing request with a
// fresh X-Request-ID so server-side logs can be correlated with client ones.
func RequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripFunc(func(req *http.Request) (*http.Response, error) {
			clone := req.Clone(req.Context())
			clone.Header.Set("X-Request-ID", uuid.New().String())
			return next.RoundTrip(clone)
		})
	}
}
