// Package gateway is the browser-facing HTTP surface of authgate.
//
// Every request gets its own short-lived session controller over a
// cookie-backed vault, so the gateway itself holds no per-user state
// beyond the shared volatile fingerprint store, keyed by a device
// cookie. The package derives hub/site mode from the path, serves the
// auth endpoints (login, register, refresh, logout, profile), and
// guards protected routes.
package gateway
