// Package config provides gateway configuration for authgate.
package config

import "time"

// Default configuration values.
const (
	DefaultListen       = "127.0.0.1:8480"
	DefaultLocale       = "fr"
	DefaultRateLimit    = 100
	DefaultPlatformURL  = "https://api.kehilahub.org"
	DefaultTimeout      = 30 * time.Second
	DefaultRefreshEvery = 45 * time.Minute
	DefaultAttemptRate  = 5.0 / 60.0
	DefaultAttemptBurst = 5
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "json"
)

// Default returns the default gateway configuration.
func Default() *GatewayConfig {
	return &GatewayConfig{
		Server: ServerSection{
			Listen:        DefaultListen,
			DefaultLocale: DefaultLocale,
			RateLimit:     DefaultRateLimit,
		},
		Platform: PlatformSection{
			BaseURL: DefaultPlatformURL,
			Timeout: DefaultTimeout,
		},
		Auth: AuthSection{
			RefreshInterval: DefaultRefreshEvery,
			AttemptRate:     DefaultAttemptRate,
			AttemptBurst:    DefaultAttemptBurst,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
