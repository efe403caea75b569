// Package config provides gateway configuration for authgate.
package config

// Sanitize returns a copy of the config safe for logging.
//
// The gateway config carries no credential material today, only file
// paths and endpoints, so the copy is returned unchanged. Any future
// secret field must be masked here before it reaches a log line.
func Sanitize(cfg *GatewayConfig) GatewayConfig {
	out := *cfg
	out.Auth.FallbackTenants = append([]string(nil), cfg.Auth.FallbackTenants...)
	return out
}
