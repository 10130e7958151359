package transport

import (
	"errors"
	"net/http"

	"teller/pkg/platform/circuit"
)

// ErrCircuitOpen is returned without touching the network while the API
// circuit is open.
var ErrCircuitOpen = errors.New("api circuit open")

// CircuitMetrics records circuit state transitions.
type CircuitMetrics interface {
	SetCircuitOpen(open bool)
}

// Breaker returns middleware that fails fast while the remote API is
// unreachable. Only transport-level failures trip the circuit; HTTP error
// statuses are responses and count as successes here.
func Breaker(b *circuit.Breaker, m CircuitMetrics) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripFunc(func(req *http.Request) (*http.Response, error) {
			if b == nil {
				return next.RoundTrip(req)
			}
			if !b.Allow() {
				return nil, ErrCircuitOpen
			}
			resp, err := next.RoundTrip(req)
			if err != nil {
				if opened := b.RecordFailure(); opened && m != nil {
					m.SetCircuitOpen(true)
				}
				return resp, err
			}
			if closed := b.RecordSuccess(); closed && m != nil {
				m.SetCircuitOpen(false)
			}
			return resp, nil
		})
	}
}
