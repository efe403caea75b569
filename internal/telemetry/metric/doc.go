// Package metric provides Prometheus metrics for authgate.
//
// This package implements metrics collection and exposition:
//
//   - metrics.go: metric registry and the /metrics HTTP handler
//
// Metrics include:
//
//   - Login attempts by resolution source and outcome
//   - Background refresh ticks, coalesced ticks and failures
//   - Token integrity (fingerprint) mismatches
//   - Guard redirects by reason
//   - Request latency histograms
//
// Metrics are exposed at /metrics in Prometheus format.
package metric
