// Package config provides gateway configuration for authgate.
package config

import (
	"errors"
	"net/url"
	"os"

	"github.com/kehilahub/authgate/internal/core/domain"
)

// Verify validates the configuration.
func Verify(cfg *GatewayConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyPlatform(&cfg.Platform); err != nil {
		return err
	}
	return verifyAuth(&cfg.Auth)
}

func verifyServer(cfg *ServerSection) error {
	if cfg.Listen == "" {
		return errors.New("server.listen is required")
	}
	if (cfg.TLSCertFile == "") != (cfg.TLSKeyFile == "") {
		return errors.New("server.tls_cert_file and server.tls_key_file must be set together")
	}
	if cfg.TLSCertFile != "" {
		if _, err := os.Stat(cfg.TLSCertFile); err != nil {
			return errors.New("server.tls_cert_file: " + err.Error())
		}
		if _, err := os.Stat(cfg.TLSKeyFile); err != nil {
			return errors.New("server.tls_key_file: " + err.Error())
		}
	}
	if cfg.DefaultLocale == "" {
		return errors.New("server.default_locale is required")
	}
	return nil
}

func verifyPlatform(cfg *PlatformSection) error {
	if cfg.BaseURL == "" {
		return errors.New("platform.base_url is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Host == "" {
		return errors.New("platform.base_url is not a valid URL")
	}
	if cfg.Timeout <= 0 {
		return errors.New("platform.timeout must be positive")
	}
	return nil
}

func verifyAuth(cfg *AuthSection) error {
	if cfg.RefreshInterval <= 0 {
		return errors.New("auth.refresh_interval must be positive")
	}
	// The renewal period has to fit inside the access token lifetime
	// or every refresh races expiry.
	if cfg.RefreshInterval >= domain.AccessTokenTTL {
		return errors.New("auth.refresh_interval must be shorter than the access token lifetime")
	}
	if cfg.AttemptRate <= 0 || cfg.AttemptBurst < 1 {
		return errors.New("auth.attempt_rate and auth.attempt_burst must be positive")
	}
	return nil
}
