// Package config provides gateway configuration for authgate.
//
// This package defines the gateway configuration structure and validation:
//
//   - spec.go: GatewayConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Business validation (required endpoints, durations)
//   - sanitize.go: Log sanitization (hide sensitive values)
//
// Configuration is loaded via internal/infra/confloader and supports
// multiple sources: files, environment variables, and flags. The
// auth.fallback_tenants list is hot-reloadable through the confloader
// watcher.
package config
