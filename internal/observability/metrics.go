package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels shared by the auth counters.
const (
	ResultSuccess   = "success"
	ResultFailure   = "failure"
	ResultAnonymous = "anonymous"
	ResultInvalid   = "invalid"
	ResultExpired   = "expired"
	ResultUnknown   = "unknown_principal"
	ResultDisabled  = "disabled"
	ResultError     = "error"
	ResultLocked    = "locked"
	ResultAllowed   = "allowed"
	ResultDenied    = "denied"
)

// Metrics records authentication and authorization outcomes.
type Metrics interface {
	RecordLogin(result string)
	RecordTokenIssued()
	RecordAuthentication(result string)
	RecordAuthorization(result string)
}

// PrometheusMetrics implements Metrics with Prometheus counters.
type PrometheusMetrics struct {
	registry       *prometheus.Registry
	logins         *prometheus.CounterVec
	tokensIssued   prometheus.Counter
	authentication *prometheus.CounterVec
	authorization  *prometheus.CounterVec
}

// NewPrometheusMetrics registers the auth counters on registry.
// A nil registry gets a fresh one.
func NewPrometheusMetrics(registry *prometheus.Registry) *PrometheusMetrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &PrometheusMetrics{
		registry: registry,
		logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "petclinic",
				Name:      "login_attempts_total",
				Help:      "Login attempts by result.",
			},
			[]string{"result"},
		),
		tokensIssued: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "petclinic",
				Name:      "tokens_issued_total",
				Help:      "Bearer tokens issued.",
			},
		),
		authentication: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "petclinic",
				Name:      "authentications_total",
				Help:      "Bearer authentication outcomes per request.",
			},
			[]string{"result"},
		),
		authorization: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "petclinic",
				Name:      "authorization_decisions_total",
				Help:      "Authorization decisions by result.",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(m.logins, m.tokensIssued, m.authentication, m.authorization)
	return m
}

func (m *PrometheusMetrics) RecordLogin(result string) {
	m.logins.WithLabelValues(result).Inc()
}

func (m *PrometheusMetrics) RecordTokenIssued() {
	m.tokensIssued.Inc()
}

func (m *PrometheusMetrics) RecordAuthentication(result string) {
	m.authentication.WithLabelValues(result).Inc()
}

func (m *PrometheusMetrics) RecordAuthorization(result string) {
	m.authorization.WithLabelValues(result).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// NopMetrics discards every observation.
type NopMetrics struct{}

func (NopMetrics) RecordLogin(string)          {}
func (NopMetrics) RecordTokenIssued()          {}
func (NopMetrics) RecordAuthentication(string) {}
func (NopMetrics) RecordAuthorization(string)  {}
