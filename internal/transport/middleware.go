package transport

import "net/http"

// Middleware wraps a round tripper with additional behavior. Middlewares are
// composed explicitly and applied in a fixed order, so each transform of an
// outgoing request or incoming response is independently testable.
type Middleware func(next http.RoundTripper) http.RoundTripper

// RoundTripFunc adapts a function to http.RoundTripper.
type RoundTripFunc func(req *http.Request) (*http.Response, error)

// RoundTrip implements http.RoundTripper.
func (f RoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Chain applies middlewares around base. The first middleware in the list
// becomes the outermost wrapper: Chain(base, a, b) runs a before b before
// base on the way out, and in reverse on the way back.
func Chain(base http.RoundTripper, mw ...Middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	for i := len(mw) - 1; i >= 0; i-- {
		if mw[i] != nil {
			base = mw[i](base)
		}
	}
	return base
}
