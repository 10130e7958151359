package transport

import (
	"net/http"
	"time"
)

// RequestMetrics records per-request counters and latency.
type RequestMetrics interface {
	ObserveRequest(method string, status int, elapsed time.Duration)
}

// Measure returns middleware that reports each round trip to the metrics
// sink. Transport-level failures are reported with status 0.
func Measure(m RequestMetrics) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripFunc(func(req *http.Request) (*http.Response, error) {
			if m == nil {
				return next.RoundTrip(req)
			}
			start := time.Now()
			resp, err := next.RoundTrip(req)
			elapsed := time.Since(start)
			if err != nil {
				m.ObserveRequest(req.Method, 0, elapsed)
				return resp, err
			}
			m.ObserveRequest(req.Method, resp.StatusCode, elapsed)
			return resp, nil
		})
	}
}
