package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the client.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestLatency  *prometheus.HistogramVec
	AuthFailures    prometheus.Counter
	ForcedLogouts   prometheus.Counter
	SessionRestores *prometheus.CounterVec
	Logins          *prometheus.CounterVec
	CircuitOpen     prometheus.Gauge
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the metrics on the given registerer. Tests pass a fresh
// registry to avoid duplicate registration across cases.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "teller_requests_total",
			Help: "Total number of API requests, labeled by method and status",
		}, []string{"method", "status"}),
		RequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "teller_request_latency_seconds",
			Help:    "Latency of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		AuthFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "teller_auth_failures_total",
			Help: "Total number of authorization failures (HTTP 401)",
		}),
		ForcedLogouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "teller_forced_logouts_total",
			Help: "Total number of forced logouts triggered by 401 responses",
		}),
		SessionRestores: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "teller_session_restores_total",
			Help: "Total number of session restore attempts, labeled by outcome",
		}, []string{"outcome"}),
		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "teller_logins_total",
			Help: "Total number of login attempts, labeled by outcome",
		}, []string{"outcome"}),
		CircuitOpen: factory.NewGauge(prometheus.GaugeOpts{
			Name: "teller_circuit_open",
			Help: "Whether the API circuit breaker is currently open (1) or closed (0)",
		}),
	}
}

// ObserveRequest records one API round trip. Transport-level failures are
// reported with status 0 and labeled "error".
func (m *Metrics) ObserveRequest(method string, status int, elapsed time.Duration) {
	label := "error"
	if status != 0 {
		label = strconv.Itoa(status)
	}
	m.RequestsTotal.WithLabelValues(method, label).Inc()
	m.RequestLatency.WithLabelValues(method).Observe(elapsed.Seconds())
}

// IncrementAuthFailures increments the authorization failures counter.
func (m *Metrics) IncrementAuthFailures() {
	m.AuthFailures.Inc()
}

// IncrementForcedLogouts increments the forced logout counter.
func (m *Metrics) IncrementForcedLogouts() {
	m.ForcedLogouts.Inc()
}

// IncrementSessionRestores records a restore attempt outcome
// ("authenticated", "anonymous", "error").
func (m *Metrics) IncrementSessionRestores(outcome string) {
	m.SessionRestores.WithLabelValues(outcome).Inc()
}

// IncrementLogins records a login attempt outcome ("success", "failure").
func (m *Metrics) IncrementLogins(outcome string) {
	m.Logins.WithLabelValues(outcome).Inc()
}

// SetCircuitOpen records the circuit breaker state.
func (m *Metrics) SetCircuitOpen(open bool) {
	if open {
		m.CircuitOpen.Set(1)
		return
	}
	m.CircuitOpen.Set(0)
}
