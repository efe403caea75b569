// Package main provides the entry point for authgate-server.
//
// The server is the browser-facing authentication gateway for the
// kehilahub platform:
//
//   - Auth endpoints (login, register, refresh, logout, profile) over
//     cookie-backed sessions
//   - Tenant cascade resolution against the platform API
//   - Guarded routes with locale-aware redirects
//   - /healthz and /metrics endpoints
//
// Usage:
//
//	authgate-server [flags]
//	authgate-server --config /path/to/config.yaml
//
// The server loads configuration, wires the platform client and the
// tenant resolver, and serves until interrupted. The fallback tenant
// list reloads on config file changes.
package main
