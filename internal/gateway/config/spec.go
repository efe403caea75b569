// Package config provides gateway configuration for authgate.
package config

import "time"

// GatewayConfig is the root configuration for authgate-server.
type GatewayConfig struct {
	Server   ServerSection   `koanf:"server"`
	Platform PlatformSection `koanf:"platform"`
	Auth     AuthSection     `koanf:"auth"`
	Log      LogSection      `koanf:"log"`
}

// ServerSection configures the gateway's own HTTP endpoint.
type ServerSection struct {
	// Listen is the bind address.
	Listen string `koanf:"listen"`

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set. The
	// certificate is reloaded on change.
	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`

	// DefaultLocale is used when a path carries no locale segment.
	DefaultLocale string `koanf:"default_locale"`

	// RateLimit is the per-IP request budget (requests/second).
	// Zero disables the limiter.
	RateLimit int `koanf:"rate_limit"`

	// InsecureCookies drops the Secure flag on session cookies.
	// Only for local development against plain HTTP.
	InsecureCookies bool `koanf:"insecure_cookies"`
}

// PlatformSection configures the upstream platform API.
type PlatformSection struct {
	// BaseURL is the platform API origin.
	BaseURL string `koanf:"base_url"`

	// CAFile adds a private CA for the platform connection.
	CAFile string `koanf:"ca_file"`

	// Timeout bounds a single platform call.
	Timeout time.Duration `koanf:"timeout"`
}

// AuthSection configures session lifecycle behavior.
type AuthSection struct {
	// RefreshInterval is the background renewal period.
	RefreshInterval time.Duration `koanf:"refresh_interval"`

	// FallbackTenants is the degraded-mode candidate list used when
	// the tenant directory is unavailable. Hot-reloadable; empty
	// disables degraded mode.
	FallbackTenants []string `koanf:"fallback_tenants"`

	// AttemptRate and AttemptBurst bound login attempts per email.
	AttemptRate  float64 `koanf:"attempt_rate"`
	AttemptBurst int     `koanf:"attempt_burst"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
