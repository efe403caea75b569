// Package metric provides Prometheus metrics for authgate.
package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// namespace prefixes every metric name.
const namespace = "authgate"

// Login attempt sources, recorded as the "source" label.
const (
	SourceHint      = "hint"
	SourceDirectory = "directory"
	SourceFallback  = "fallback"
	SourceHub       = "hub"
)

// Guard redirect reasons, recorded as the "reason" label.
const (
	ReasonUnauthenticated = "unauthenticated"
	ReasonRoleUnmet       = "role_unmet"
)

// Registry holds all application metrics backed by a dedicated
// Prometheus registry, so tests never collide on the global default.
type Registry struct {
	reg *prometheus.Registry

	// Authentication metrics
	LoginAttempts         *prometheus.CounterVec
	RefreshTicks          prometheus.Counter
	RefreshCoalesced      prometheus.Counter
	RefreshFailures       prometheus.Counter
	FingerprintMismatches prometheus.Counter
	SessionsMigrated      prometheus.Counter

	// Gateway metrics
	GuardRedirects  *prometheus.CounterVec
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewRegistry creates and registers all application metrics.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		reg: reg,

		LoginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by resolution source and outcome.",
		}, []string{"source", "outcome"}),

		RefreshTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_ticks_total",
			Help:      "Background session refresh attempts.",
		}),

		RefreshCoalesced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_coalesced_total",
			Help:      "Refresh ticks dropped because a renewal was already in flight.",
		}),

		RefreshFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_failures_total",
			Help:      "Background refreshes rejected by the platform API.",
		}),

		FingerprintMismatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fingerprint_mismatches_total",
			Help:      "Stored access tokens that failed the integrity check.",
		}),

		SessionsMigrated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_migrated_total",
			Help:      "Legacy session records folded into paired records.",
		}),

		GuardRedirects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guard_redirects_total",
			Help:      "Route guard redirects by reason.",
		}, []string{"reason"}),

		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),

		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		r.LoginAttempts,
		r.RefreshTicks,
		r.RefreshCoalesced,
		r.RefreshFailures,
		r.FingerprintMismatches,
		r.SessionsMigrated,
		r.GuardRedirects,
		r.RequestsTotal,
		r.RequestDuration,
	)
	return r
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}
